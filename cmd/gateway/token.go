package main

import (
	"errors"
	"fmt"
	"time"

	"api-guard/bootstrap"
	"api-guard/config"
	authdomain "api-guard/middleware/auth/domain"

	"go.uber.org/zap"
)

type tokenCmd struct {
	Subject string `required:"" help:"Token subject (user id)."`
	Role    string `default:"USER" enum:"ADMIN,USER" help:"Role claim."`
}

func (t *tokenCmd) Run(cfg *config.Config, log *zap.Logger) error {
	if len(cfg.SigningSecret) < authdomain.MinSecretLen {
		return fmt.Errorf("SIGNING_SECRET: %w", authdomain.ErrSecretTooShort)
	}
	role, ok := authdomain.ParseRole(t.Role)
	if !ok {
		return errors.New("unknown role")
	}

	svc, err := bootstrap.Tokens(*cfg)
	if err != nil {
		return err
	}
	tok, err := svc.Generate(t.Subject, role, time.Now())
	if err != nil {
		return err
	}
	log.Debug("token issued", zap.String("subject", t.Subject), zap.String("role", string(role)), zap.Duration("ttl", svc.TTL()))
	fmt.Println(tok)
	return nil
}
