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

	"github.com/dajiagoods/storefront/internal/admin"
	"github.com/dajiagoods/storefront/internal/config"
	"github.com/dajiagoods/storefront/internal/fallback"
	"github.com/dajiagoods/storefront/internal/gateway"
	"github.com/dajiagoods/storefront/internal/httpx"
	kafkax "github.com/dajiagoods/storefront/internal/kafka"
	"github.com/dajiagoods/storefront/internal/leads"
	"github.com/dajiagoods/storefront/internal/media"
	"github.com/dajiagoods/storefront/internal/orders"
	"github.com/dajiagoods/storefront/internal/outbox"
	"github.com/dajiagoods/storefront/internal/postgres"
	"github.com/dajiagoods/storefront/internal/redisx"
	"github.com/dajiagoods/storefront/internal/schema"
	"github.com/dajiagoods/storefront/internal/verify"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Remote store. A missing or unreachable database is not fatal: the
	// storefront keeps serving from local storage and the admin surface
	// reports itself unavailable.
	var gw *gateway.Gateway
	mode := "local-only"
	if cfg.PostgresDSN != "" {
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			log.Printf("db connect failed, running local-only: %v", err)
		} else {
			defer db.Close()
			ns := cfg.SchemaNamespace
			if ns == "" {
				detected, ok := schema.Detect(ctx, db, "leads")
				if !ok {
					log.Fatalf("no candidate namespace answered the probe; set SCHEMA_NAMESPACE")
				}
				ns = detected
			}
			log.Printf("remote store connected, namespace %q", ns)
			gw = gateway.New(db, ns)
			mode = "postgres"
		}
	}

	// Session/fallback storage: Redis when configured, in-process otherwise.
	var store fallback.Store
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := redisx.Ping(ctx, rdb); err != nil {
			log.Fatalf("redis ping: %v", err)
		}
		store = fallback.NewRedis(rdb)
	} else {
		log.Printf("no REDIS_ADDR, sessions and local collections are in-process only")
		store = fallback.NewMemory()
	}

	// Kafka producer, optional.
	var prod *kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		prod = kafkax.NewProducer(cfg.KafkaBrokers, cfg.ServiceName, 1024)
		prod.Start(ctx)
	}

	// Outbox reconciler, only meaningful with a remote store.
	var box *outbox.Outbox
	if gw != nil {
		box = outbox.New(store, gw)
		box.Start(ctx, cfg.OutboxFlushInterval)
	}

	leadSvc := &leads.Service{Store: store}
	orderSvc := &orders.Service{Store: store}
	verifySvc := &verify.Service{}
	adminSvc := &admin.Service{}
	if gw != nil {
		leadSvc.Remote = gw
		leadSvc.Outbox = box
		orderSvc.Remote = gw
		orderSvc.Outbox = box
		verifySvc.Remote = gw
		adminSvc.Remote = gw
	}
	if prod != nil {
		leadSvc.Producer = prod
		orderSvc.Producer = prod
	}

	mediaStore, err := media.New(ctx, media.Config{
		Bucket:   cfg.MediaBucket,
		Region:   cfg.MediaRegion,
		Endpoint: cfg.MediaEndpoint,
	})
	if err != nil {
		log.Fatalf("media store: %v", err)
	}
	if mediaStore != nil {
		adminSvc.Blobs = mediaStore
	}

	auth := &admin.Auth{
		Password: cfg.AdminPassword,
		Secret:   []byte(cfg.AdminTokenSecret),
		TTL:      cfg.AdminTokenTTL,
	}
	if cfg.AdminPassword == "" {
		log.Printf("no ADMIN_PASSWORD, admin login is disabled")
	}

	router := httpx.NewRouter(mode)
	sf := &httpx.StorefrontHandler{
		Store:   store,
		Gateway: gw,
		Leads:   leadSvc,
		Orders:  orderSvc,
		Verify:  verifySvc,
	}
	sf.Register(router)
	var namespace string
	if gw != nil {
		namespace = gw.Namespace
	}
	ah := &httpx.AdminHandler{
		Auth:      auth,
		Admin:     adminSvc,
		Gateway:   gw,
		Media:     mediaStore,
		Outbox:    box,
		Namespace: namespace,
	}
	ah.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s (%s)", cfg.HTTPAddr, mode)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	if prod != nil {
		prod.Close()
	}
	cancel() // stop producer loop and outbox ticker
	if prod != nil {
		prod.WaitClosed()
	}
	if box != nil {
		box.WaitClosed()
	}
}
