// Comando purge remove refresh tokens e códigos de recuperação vencidos.
// Feito para rodar periodicamente (cron); as requisições nunca apagam essas linhas.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"brasero/config"
	"brasero/internal/pkg/database"
	"brasero/internal/pkg/logger"
	"brasero/internal/repository/recoveryrepo"
	"brasero/internal/repository/sessionrepo"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	var grace time.Duration
	flag.DurationVar(&grace, "grace", 24*time.Hour, "tempo mínimo desde a expiração/revogação antes de apagar")
	flag.Parse()

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()

	ctx := context.Background()
	cutoff := time.Now().Add(-grace)

	tokens, err := sessionrepo.NewSessionRepository(db, cfg.DBTimeout, log).Purge(ctx, cutoff)
	if err != nil {
		log.Fatal("Falha ao apagar refresh tokens.", err)
	}
	codes, err := recoveryrepo.NewRecoveryRepository(db, cfg.DBTimeout, log).Purge(ctx, cutoff)
	if err != nil {
		log.Fatal("Falha ao apagar códigos de recuperação.", err)
	}

	log.Info("Limpeza concluída.", map[string]interface{}{
		"refresh_tokens": tokens,
		"recovery_codes": codes,
		"cutoff":         cutoff.Format(time.RFC3339),
	})
}
