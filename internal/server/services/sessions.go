package services

import (
	"context"

	"github.com/Aditya-creator173/SQL-Compiler/internal/logging"
	"github.com/Aditya-creator173/SQL-Compiler/internal/server/sqlexec"
)

// Sessions hands out pinned connections; *sqlexec.Engine implements it.
type Sessions interface {
	Session(ctx context.Context) (*sqlexec.Session, error)
}

func closeSession(ctx context.Context, s *sqlexec.Session, logger logging.Logger) {
	if err := s.Close(); err != nil {
		logger.Warn(ctx, "session close", "error", err)
	}
}
