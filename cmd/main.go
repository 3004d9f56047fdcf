package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Nossos pacotes de infraestrutura e utilitários
	"brasero/config"
	"brasero/internal/pkg/cache"
	"brasero/internal/pkg/database"
	"brasero/internal/pkg/events"
	"brasero/internal/pkg/logger"
	"brasero/internal/pkg/mailer"
	"brasero/internal/pkg/token"
	"brasero/internal/pkg/webpay"

	// Camadas para Injeção de Dependências
	"brasero/internal/api/admin"
	"brasero/internal/api/auth"
	"brasero/internal/api/cart"
	"brasero/internal/api/order"
	"brasero/internal/api/payment"
	"brasero/internal/api/product"
	"brasero/internal/api/router"
	"brasero/internal/repository/cartrepo"
	"brasero/internal/repository/orderrepo"
	"brasero/internal/repository/productrepo"
	"brasero/internal/repository/recoveryrepo"
	"brasero/internal/repository/sessionrepo"
	"brasero/internal/repository/userrepo"
	"brasero/internal/service/adminservice"
	"brasero/internal/service/authservice"
	"brasero/internal/service/cartservice"
	"brasero/internal/service/orderservice"
	"brasero/internal/service/paymentservice"
	"brasero/internal/service/productservice"
	"brasero/internal/service/recoveryservice"
)

func main() {
	log.Println("🔥 Inicializando API El Brasero...")
	// As variáveis essenciais podem vir do ambiente (ex: Docker), então a
	// ausência do .env é só um aviso.
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado ou erro de leitura. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuração inválida.", err)
	}
	log.Info("Configurações carregadas.", map[string]interface{}{"env": cfg.Environment})

	// 1. Infraestrutura

	// A. Banco de Dados (PostgreSQL)
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	log.Info("Conexão PostgreSQL estabelecida.", nil)

	// B. Cache (Redis). Sem Redis a API segue sem cache e sem rate limit.
	cacheClient, err := cache.NewRedisClient(cfg.RedisAddr)
	if err != nil {
		log.Warn("Redis indisponível; cache e rate limit degradados.", map[string]interface{}{"error": err.Error()})
	} else {
		log.Info("Conexão Redis estabelecida.", nil)
	}
	defer cacheClient.Close()

	// C. Mensageria (RabbitMQ)
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.RabbitMQURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.RabbitMQURL, log)
		if err != nil {
			log.Warn("RabbitMQ indisponível; eventos de pedido não serão publicados.", map[string]interface{}{"error": err.Error()})
		} else {
			defer amqpPublisher.Close()
			publisher = amqpPublisher
			log.Info("Conexão RabbitMQ estabelecida.", nil)
		}
	}

	// D. SMTP, Webpay e JWT
	smtpMailer := mailer.NewSMTPMailer(mailer.Config{
		Host:       cfg.SMTPHost,
		Port:       cfg.SMTPPort,
		Username:   cfg.SMTPUser,
		Password:   cfg.SMTPPass,
		FromAddr:   cfg.SMTPFrom,
		FromName:   cfg.SMTPFromName,
		Encryption: cfg.SMTPEncryption,
	})
	gateway := webpay.NewClient(webpay.Config{
		CommerceCode: cfg.WebpayCommerceCode,
		APIKey:       cfg.WebpayAPIKey,
		BaseURL:      cfg.WebpayBaseURL,
	})
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.AccessTokenExpiry)

	// 2. INJEÇÃO DE DEPENDÊNCIAS
	// Ordem: Repository -> Service -> Handler

	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	sessionRepo := sessionrepo.NewSessionRepository(db, cfg.DBTimeout, log)
	recoveryRepo := recoveryrepo.NewRecoveryRepository(db, cfg.DBTimeout, log)
	productRepo := productrepo.NewProductRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)
	cartRepo := cartrepo.NewCartRepository(db, cfg.DBTimeout, log)
	orderRepo := orderrepo.NewOrderRepository(db, cfg.DBTimeout, log)
	log.Debug("Repositórios inicializados.", nil)

	authSvc := authservice.NewService(userRepo, sessionRepo, tokenSvc, authservice.Config{
		RefreshTokenExpiry: cfg.RefreshTokenExpiry,
		MaxSessionsPerUser: cfg.MaxSessionsPerUser,
		BcryptCost:         cfg.BcryptCost,
	}, log)
	recoverySvc := recoveryservice.NewService(userRepo, recoveryRepo, smtpMailer, cfg.RecoveryCodeTTL, cfg.BcryptCost, log)
	productSvc := productservice.NewService(productRepo, log)
	cartSvc := cartservice.NewService(cartRepo, productRepo, log)
	orderSvc := orderservice.NewService(orderRepo, cartRepo, publisher, log)
	paymentSvc := paymentservice.NewService(orderRepo, gateway, publisher, paymentservice.Config{
		ReturnURL:         cfg.WebpayReturnURL,
		FrontendURL:       cfg.FrontendURL,
		SimulationEnabled: cfg.SimulatedPayments,
	}, log)
	adminSvc := adminservice.NewService(userRepo, cfg.BcryptCost, log)
	log.Debug("Serviços inicializados.", nil)

	handlers := router.Handlers{
		Auth:    auth.NewHandler(authSvc, recoverySvc, log),
		Product: product.NewHandler(productSvc, log),
		Cart:    cart.NewHandler(cartSvc, log),
		Order:   order.NewHandler(orderSvc, log),
		Payment: payment.NewHandler(paymentSvc, log),
		Admin:   admin.NewHandler(adminSvc, log),
	}

	// 3. Roteador e Servidor
	r := router.NewRouter(handlers, tokenSvc, authSvc, cacheClient, router.Config{
		CORSOrigins:       cfg.CORSOrigins,
		Global:            router.Limit{Max: cfg.RateLimitMaxRequests, Period: cfg.RateLimitPeriod},
		Auth:              router.Limit{Max: cfg.AuthRateLimitMax, Period: cfg.AuthRateLimitPeriod},
		Recovery:          router.Limit{Max: cfg.RecoveryRateLimitMax, Period: cfg.RecoveryRateLimitPeriod},
		SimulationEnabled: cfg.SimulatedPayments,
	}, log)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 40 * time.Second, // o commit no Webpay pode levar até 30s
		IdleTimeout:  60 * time.Second,
	}

	// 4. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor El Brasero ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
