// Package catalog consulta productos y clientes y aplica las reglas de permisos a las altas,
// ediciones y cambios de precio del catálogo.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/disfruleg/disfruleg-api/internal/application/dto"
	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/authz"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/money"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// PriceSetter guarda precios por grupo e invalida lo que dependa de ellos.
type PriceSetter interface {
	SetGroupPrice(ctx context.Context, p entity.PrecioGrupo) error
}

// Service catálogo de productos y clientes.
type Service struct {
	products repository.ProductRepository
	clients  repository.ClientRepository
	prices   PriceSetter
	gate     authz.Gate
	log      *logger.Logger
}

func NewService(products repository.ProductRepository, clients repository.ClientRepository, prices PriceSetter, log *logger.Logger) *Service {
	return &Service{products: products, clients: clients, prices: prices, log: log}
}

// Product producto por id; ErrNotFound si no existe.
func (s *Service) Product(ctx context.Context, id int64) (*entity.Producto, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("producto %d: %w", id, domain.ErrNotFound)
	}
	return p, nil
}

func (s *Service) Products(ctx context.Context, search string, page dto.PageRequest) ([]*entity.Producto, error) {
	page.DefaultPage()
	return s.products.List(ctx, strings.TrimSpace(search), page.Limit, page.Offset)
}

// CreateProduct alta de producto. Un producto especial exige admin o elevación.
func (s *Service) CreateProduct(ctx context.Context, p authz.Principal, in dto.CreateProductRequest, elevated bool) (*entity.Producto, error) {
	if err := s.gate.May(p, authz.OpAddProduct, authz.Context{ProductSpecial: in.EsEspecial, AdminChallengePassed: elevated}).Err(); err != nil {
		return nil, err
	}
	prod := &entity.Producto{
		Nombre:     strings.TrimSpace(in.Nombre),
		Unidad:     strings.TrimSpace(in.Unidad),
		Stock:      money.RoundQty(in.Stock),
		EsEspecial: in.EsEspecial,
	}
	if prod.Nombre == "" || prod.Unidad == "" {
		return nil, fmt.Errorf("%w: nombre y unidad son obligatorios", domain.ErrInvalidInput)
	}
	if err := s.products.Create(ctx, prod); err != nil {
		return nil, err
	}
	s.log.Info().Int64("id_producto", prod.ID).Bool("especial", prod.EsEspecial).Str("usuario", p.Username).Msg("producto creado")
	return prod, nil
}

// UpdateProduct edita un producto. Es especial si lo era o si pasa a serlo.
func (s *Service) UpdateProduct(ctx context.Context, p authz.Principal, id int64, in dto.UpdateProductRequest, elevated bool) (*entity.Producto, error) {
	prod, err := s.Product(ctx, id)
	if err != nil {
		return nil, err
	}
	special := prod.EsEspecial || (in.EsEspecial != nil && *in.EsEspecial)
	if err := s.gate.May(p, authz.OpEditProduct, authz.Context{ProductSpecial: special, AdminChallengePassed: elevated}).Err(); err != nil {
		return nil, err
	}
	if in.Nombre != nil {
		prod.Nombre = strings.TrimSpace(*in.Nombre)
	}
	if in.Unidad != nil {
		prod.Unidad = strings.TrimSpace(*in.Unidad)
	}
	if in.Stock != nil {
		prod.Stock = money.RoundQty(*in.Stock)
	}
	if in.EsEspecial != nil {
		prod.EsEspecial = *in.EsEspecial
	}
	if prod.Nombre == "" || prod.Unidad == "" {
		return nil, fmt.Errorf("%w: nombre y unidad son obligatorios", domain.ErrInvalidInput)
	}
	if err := s.products.Update(ctx, prod); err != nil {
		return nil, err
	}
	s.log.Info().Int64("id_producto", prod.ID).Str("usuario", p.Username).Msg("producto actualizado")
	return prod, nil
}

// SetPrice fija el precio base del producto para un grupo; solo administradores.
func (s *Service) SetPrice(ctx context.Context, p authz.Principal, productID int64, in dto.SetPriceRequest) error {
	if err := s.gate.May(p, authz.OpChangePrice, authz.Context{}).Err(); err != nil {
		return err
	}
	if _, err := s.Product(ctx, productID); err != nil {
		return err
	}
	if err := s.prices.SetGroupPrice(ctx, entity.PrecioGrupo{
		GrupoID:    in.GrupoID,
		ProductoID: productID,
		PrecioBase: money.Round(in.PrecioBase),
	}); err != nil {
		return err
	}
	s.log.Info().Int64("id_producto", productID).Int64("id_grupo", in.GrupoID).
		Str("precio", money.Round(in.PrecioBase).StringFixed(money.MoneyScale)).Str("usuario", p.Username).Msg("precio actualizado")
	return nil
}

// Client cliente con grupo y tipo; ErrNotFound si no existe.
func (s *Service) Client(ctx context.Context, id int64) (*entity.ClienteDetalle, error) {
	c, err := s.clients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("cliente %d: %w", id, domain.ErrNotFound)
	}
	return c, nil
}

func (s *Service) Clients(ctx context.Context, search string, page dto.PageRequest) ([]*entity.ClienteDetalle, error) {
	page.DefaultPage()
	return s.clients.List(ctx, strings.TrimSpace(search), page.Limit, page.Offset)
}
