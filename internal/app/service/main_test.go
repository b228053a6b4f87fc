package service

import (
	"os"
	"testing"
	"time"

	"codequest/internal/common/security"
	"codequest/internal/platform/config"
	"codequest/internal/platform/logger"
)

func TestMain(m *testing.M) {
	config.AppConfig = &config.Config{JWTKey: []byte("test-secret"), JWTExp: time.Hour}
	security.InitJWT()
	logger.Init("test", "error")
	os.Exit(m.Run())
}
