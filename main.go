package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/go-sql-driver/mysql"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"SAIS-backend/internal/attendance"
	"SAIS-backend/internal/calendar"
	"SAIS-backend/internal/directory"
	"SAIS-backend/internal/leave"
	"SAIS-backend/internal/platform/auth"
	"SAIS-backend/internal/platform/db"
	"SAIS-backend/internal/report"
)

func main() {
	// 設定読み込み
	cfg, err := db.LoadConfig("config/config.yaml")
	if err != nil {
		panic(err)
	}

	// 動作モード取得
	mode := cfg.Mode
	log.Printf("[INFO] mode:%s\n", mode)

	if cfg.Mode != "dev" && cfg.Mode != "release" {
		fmt.Println("Usage: go run main.go [dev|release]")
		return
	}

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("[ERROR] auth.jwt_secret is not set")
	}
	secret := []byte(cfg.Auth.JWTSecret)

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		panic(err)
	}
	defer conn.Close()

	log.Printf("[INFO] connected to DB: %s", cfg.DB.DBName)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	_ = r.SetTrustedProxies(nil)

	if mode == "dev" {
		// CORS（開発中のみ必要）
		r.Use(cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:3000"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowCredentials: true,
		}))

		// Swagger UI（開発用）
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// ヘルス
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	// サービス組み立て。日次サマリはセッション出席から導出されるので、
	// attendance は directory に、report は残り全部に依存する
	dirSvc := directory.NewService(conn)
	calSvc := calendar.NewService(conn)
	attSvc := attendance.NewService(conn, dirSvc)
	leaveSvc := leave.NewService(conn)
	reportSvc := report.NewService(dirSvc, calSvc, attSvc, attSvc, leaveSvc)

	// /api/v1
	api := r.Group("/api/v1")
	auth.RegisterRoutes(api, auth.NewService(conn, secret))

	// 学内APIはトークン必須
	protected := api.Group("")
	protected.Use(auth.RequireAuth(secret))
	directory.RegisterRoutes(protected, dirSvc)
	calendar.RegisterRoutes(protected, calSvc)
	attendance.RegisterRoutes(protected, attSvc)
	leave.RegisterRoutes(protected, leaveSvc)
	report.RegisterRoutes(protected, reportSvc)

	// TLS起動
	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: r,
	}

	var certFile, keyFile string
	if mode == "dev" {
		certFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/dev/%s", cfg.Certificate.Key)
	} else {
		certFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Cert)
		keyFile = fmt.Sprintf("config/tls/release/%s", cfg.Certificate.Key)
	}

	go func() {
		log.Printf("[INFO] listening on https://0.0.0.0%s", cfg.Addr)
		if err := srv.ListenAndServeTLS(certFile, keyFile); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	log.Println("[INFO] shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal(err)
	}
}
