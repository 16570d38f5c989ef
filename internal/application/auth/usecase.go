package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/disfruleg/disfruleg-api/internal/application/dto"
	"github.com/disfruleg/disfruleg-api/internal/domain"
	"github.com/disfruleg/disfruleg-api/internal/domain/authz"
	"github.com/disfruleg/disfruleg-api/internal/domain/entity"
	"github.com/disfruleg/disfruleg-api/internal/domain/repository"
	"github.com/disfruleg/disfruleg-api/pkg/jwt"
	"github.com/disfruleg/disfruleg-api/pkg/logger"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret           string
	ExpMinutes       int
	ElevationMinutes int
	Issuer           string
}

// AuthUseCase casos de uso de autenticación: login, alta de usuarios y desafío de administrador.
type AuthUseCase struct {
	userRepo repository.UserRepository
	gate     authz.Gate
	jwtCfg   JWTConfig
	used     ElevationStore
	log      *logger.Logger
}

// NewAuthUseCase construye el caso de uso de auth. Los tokens de elevación consumidos se
// registran en memoria hasta que se configure otro ElevationStore.
func NewAuthUseCase(userRepo repository.UserRepository, jwtCfg JWTConfig, log *logger.Logger) *AuthUseCase {
	return &AuthUseCase{userRepo: userRepo, jwtCfg: jwtCfg, used: NewMemoryElevationStore(), log: log}
}

// WithElevationStore reemplaza el registro de elevaciones consumidas (p. ej. Redis).
func (uc *AuthUseCase) WithElevationStore(store ElevationStore) *AuthUseCase {
	if store != nil {
		uc.used = store
	}
	return uc
}

// Login verifica usuario/password, genera JWT y retorna token + usuario.
// Usuario inexistente y password incorrecto dan el mismo ErrUnauthorized.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.checkPassword(ctx, in.Username, in.Password)
	if err != nil {
		return nil, err
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.ID, user.Username, user.Role, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("usuario", user.Username).Str("role", user.Role).Msg("inicio de sesión")
	return &dto.LoginResponse{
		Token: token,
		User:  *toUserResponse(user),
	}, nil
}

// ElevateWithAdmin verifica las credenciales de un administrador y emite un token de elevación
// para que requester ejecute una sola operación.
func (uc *AuthUseCase) ElevateWithAdmin(ctx context.Context, requester authz.Principal, in dto.ElevateRequest) (*dto.ElevateResponse, error) {
	op := authz.Operation(in.Operation)
	if !op.Valid() {
		return nil, fmt.Errorf("%w: operación desconocida %q", domain.ErrInvalidInput, in.Operation)
	}
	admin, err := uc.checkPassword(ctx, in.AdminUsername, in.AdminPassword)
	if err != nil {
		uc.log.Warn().Str("usuario", requester.Username).Str("admin", in.AdminUsername).Str("operacion", in.Operation).Msg("desafío de administrador rechazado")
		return nil, err
	}
	if !admin.IsAdmin() {
		return nil, domain.ErrUnauthorized
	}
	token, err := jwt.GenerateElevation(uc.jwtCfg.Secret, requester.Username, admin.Username, string(op), uc.jwtCfg.Issuer, uc.jwtCfg.ElevationMinutes)
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("usuario", requester.Username).Str("admin", admin.Username).Str("operacion", string(op)).Msg("elevación concedida")
	return &dto.ElevateResponse{Token: token, Operation: string(op), ExpiresIn: uc.jwtCfg.ElevationMinutes * 60}, nil
}

// VerifyElevation indica si token es una elevación vigente de p para op y la consume:
// cada token autoriza una sola petición.
func (uc *AuthUseCase) VerifyElevation(ctx context.Context, token string, p authz.Principal, op authz.Operation) bool {
	if token == "" {
		return false
	}
	claims, err := jwt.ParseElevation(uc.jwtCfg.Secret, token)
	if err != nil {
		return false
	}
	if claims.Subject != p.Username || claims.Operation != string(op) || claims.ID == "" || claims.ExpiresAt == nil {
		return false
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return false
	}
	fresh, err := uc.used.Consume(ctx, claims.ID, ttl)
	if err != nil {
		uc.log.Error().Err(err).Str("usuario", p.Username).Msg("no se pudo registrar la elevación")
		return false
	}
	if !fresh {
		uc.log.Warn().Str("usuario", p.Username).Str("admin", claims.Admin).Str("operacion", claims.Operation).Msg("token de elevación reutilizado")
	}
	return fresh
}

// CreateUser alta de usuario; solo administradores. Devuelve ErrDuplicate si el username existe.
func (uc *AuthUseCase) CreateUser(ctx context.Context, p authz.Principal, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := uc.gate.May(p, authz.OpAdminUsers, authz.Context{}).Err(); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(in.Username)
	existing, err := uc.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	nombre := in.Nombre
	if nombre == "" {
		nombre = username
	}
	role := in.Role
	if role == "" {
		role = entity.RoleVendedor
	}
	user := &entity.User{
		Username:     username,
		PasswordHash: string(hash),
		Nombre:       nombre,
		Role:         role,
		Activo:       true,
	}
	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	uc.log.Info().Str("usuario", p.Username).Str("nuevo_usuario", user.Username).Str("role", user.Role).Msg("usuario creado")
	return toUserResponse(user), nil
}

func (uc *AuthUseCase) checkPassword(ctx context.Context, username, password string) (*entity.User, error) {
	user, err := uc.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if !user.Activo {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

func toUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Nombre:   u.Nombre,
		Role:     u.Role,
	}
}
