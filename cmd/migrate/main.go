package main

import (
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"

	"brasero/config"
	"brasero/internal/pkg/database"
	"brasero/internal/pkg/logger"
)

// gooseLogger encaminha as mensagens do goose para o logger estruturado.
type gooseLogger struct {
	log logger.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.log.Debug("goose", map[string]interface{}{"format": format, "args": v})
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.log.Fatal("goose: falha fatal", fmt.Errorf(format, v...))
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)

	var migrationsDir string
	flag.StringVar(&migrationsDir, "dir", "./sql", "diretório com os arquivos de migração")
	flag.Parse()

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("goose: falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()

	goose.SetLogger(gooseLogger{log: log})
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatal("goose: dialeto não suportado.", err)
	}

	arguments := flag.Args()
	if len(arguments) == 0 {
		arguments = []string{"up"}
	}
	command, args := arguments[0], arguments[1:]

	if err := goose.Run(command, db, migrationsDir, args...); err != nil {
		log.Fatal("goose: comando falhou.", err)
	}

	log.Info("goose: comando concluído.", map[string]interface{}{"command": command, "dir": migrationsDir})
}
