package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/disfruleg/disfruleg-api/internal/domain"
)

func TestPermissionError_IsYMotivo(t *testing.T) {
	err := fmt.Errorf("vender: %w", &domain.PermissionError{Reason: domain.ReasonSpecialRequiresAdmin})

	assert.True(t, errors.Is(err, domain.ErrPermissionDenied))
	assert.False(t, errors.Is(err, domain.ErrForbidden))
	assert.Equal(t, domain.ReasonSpecialRequiresAdmin, domain.PermissionReason(err))
	assert.Equal(t, "", domain.PermissionReason(domain.ErrNotFound))
}
