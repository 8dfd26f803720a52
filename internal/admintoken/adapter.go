package admintoken

import (
	authmw "anchorage/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *Claims) *authmw.TokenClaims {
	return &authmw.TokenClaims{
		Subject: claims.Subject,
		Role:    claims.Role,
		JTI:     claims.ID,
	}
}

type ServiceAdapter struct {
	service *Service
}

func NewServiceAdapter(service *Service) *ServiceAdapter {
	return &ServiceAdapter{service: service}
}

func (a *ServiceAdapter) ValidateToken(tokenString string) (*authmw.TokenClaims, error) {
	claims, err := a.service.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
