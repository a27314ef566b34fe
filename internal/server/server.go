package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/kaupunki/parking-permits/internal/changelog"
	changelogdomain "github.com/kaupunki/parking-permits/internal/changelog/domain"
	"github.com/kaupunki/parking-permits/internal/config"
	"github.com/kaupunki/parking-permits/internal/customer"
	customerdomain "github.com/kaupunki/parking-permits/internal/customer/domain"
	"github.com/kaupunki/parking-permits/internal/emission"
	emissiondomain "github.com/kaupunki/parking-permits/internal/emission/domain"
	"github.com/kaupunki/parking-permits/internal/export"
	"github.com/kaupunki/parking-permits/internal/observability/logger"
	"github.com/kaupunki/parking-permits/internal/observability/metrics"
	"github.com/kaupunki/parking-permits/internal/order"
	orderdomain "github.com/kaupunki/parking-permits/internal/order/domain"
	"github.com/kaupunki/parking-permits/internal/permit"
	permitdomain "github.com/kaupunki/parking-permits/internal/permit/domain"
	"github.com/kaupunki/parking-permits/internal/product"
	productdomain "github.com/kaupunki/parking-permits/internal/product/domain"
	"github.com/kaupunki/parking-permits/internal/providers"
	"github.com/kaupunki/parking-permits/internal/providers/pdf"
	"github.com/kaupunki/parking-permits/internal/registry"
	"github.com/kaupunki/parking-permits/internal/talpa"
	"github.com/kaupunki/parking-permits/internal/vehicle"
	vehicledomain "github.com/kaupunki/parking-permits/internal/vehicle/domain"
	"github.com/kaupunki/parking-permits/internal/zone"
	zonedomain "github.com/kaupunki/parking-permits/internal/zone/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	zone.Module,
	product.Module,
	emission.Module,
	vehicle.Module,
	customer.Module,
	order.Module,
	changelog.Module,
	permit.Module,
	registry.Module,
	talpa.Module,
	providers.Module,
	export.Module,
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, obsMetrics *metrics.Metrics) *gin.Engine {
	if !cfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware())
	r.Use(metrics.GinMiddleware(obsMetrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					panic(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine       *gin.Engine
	cfg          config.Config
	db           *gorm.DB
	genID        *snowflake.Node
	permitSvc    permitdomain.Service
	customerSvc  customerdomain.Service
	vehicleSvc   vehicledomain.Service
	zoneSvc      zonedomain.Service
	productSvc   productdomain.Service
	emissionSvc  emissiondomain.Service
	orderSvc     orderdomain.Service
	changelogSvc changelogdomain.Service
	talpaSvc     *talpa.Service
	exportSvc    *export.Service
	pdfProvider  pdf.Provider
	persons      registry.PersonRegistry
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	DB           *gorm.DB
	GenID        *snowflake.Node
	PermitSvc    permitdomain.Service
	CustomerSvc  customerdomain.Service
	VehicleSvc   vehicledomain.Service
	ZoneSvc      zonedomain.Service
	ProductSvc   productdomain.Service
	EmissionSvc  emissiondomain.Service
	OrderSvc     orderdomain.Service
	ChangelogSvc changelogdomain.Service
	TalpaSvc     *talpa.Service
	ExportSvc    *export.Service
	PDFProvider  pdf.Provider
	Persons      registry.PersonRegistry
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		db:           p.DB,
		genID:        p.GenID,
		permitSvc:    p.PermitSvc,
		customerSvc:  p.CustomerSvc,
		vehicleSvc:   p.VehicleSvc,
		zoneSvc:      p.ZoneSvc,
		productSvc:   p.ProductSvc,
		emissionSvc:  p.EmissionSvc,
		orderSvc:     p.OrderSvc,
		changelogSvc: p.ChangelogSvc,
		talpaSvc:     p.TalpaSvc,
		exportSvc:    p.ExportSvc,
		pdfProvider:  p.PDFProvider,
		persons:      p.Persons,
	}

	svc.registerAdminRoutes()
	svc.registerTalpaRoutes()

	return svc
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/admin", s.adminIdentity())

	permits := admin.Group("/permits")
	permits.POST("", s.CreatePermit)
	permits.GET("", s.ListPermits)
	permits.GET("/:id", s.GetPermit)
	permits.PUT("/:id", s.UpdatePermit)
	permits.POST("/:id/end", s.EndPermit)
	permits.GET("/:id/price-changes", s.PermitPriceChanges)
	permits.GET("/:id/pdf", s.PermitPDF)
	admin.POST("/permit-prices", s.PermitPrices)

	customers := admin.Group("/customers")
	customers.GET("", s.ListCustomers)
	customers.GET("/:id", s.GetCustomer)
	customers.POST("/retrieve", s.RetrieveCustomer)

	addresses := admin.Group("/addresses")
	addresses.POST("", s.CreateAddress)
	addresses.GET("", s.ListAddresses)
	addresses.GET("/:id", s.GetAddress)
	addresses.PUT("/:id", s.UpdateAddress)
	addresses.DELETE("/:id", s.DeleteAddress)

	zones := admin.Group("/zones")
	zones.GET("", s.ListZones)
	zones.GET("/by-location", s.GetZoneByLocation)
	zones.GET("/:name", s.GetZone)

	products := admin.Group("/products")
	products.POST("", s.CreateProduct)
	products.GET("", s.ListProducts)
	products.GET("/:id", s.GetProduct)
	products.PUT("/:id", s.UpdateProduct)
	products.DELETE("/:id", s.DeleteProduct)

	criteria := admin.Group("/low-emission-criteria")
	criteria.POST("", s.CreateLowEmissionCriteria)
	criteria.GET("", s.ListLowEmissionCriteria)
	criteria.GET("/:id", s.GetLowEmissionCriteria)
	criteria.PUT("/:id", s.UpdateLowEmissionCriteria)
	criteria.DELETE("/:id", s.DeleteLowEmissionCriteria)

	orders := admin.Group("/orders")
	orders.GET("", s.ListOrders)
	orders.GET("/:id", s.GetOrder)

	refunds := admin.Group("/refunds")
	refunds.GET("", s.ListRefunds)
	refunds.GET("/:id", s.GetRefund)
	refunds.PUT("/:id/status", s.UpdateRefundStatus)
	refunds.GET("/:id/pdf", s.RefundPDF)

	admin.GET("/export", s.Export)
	admin.GET("/changelogs/:entity_type/:entity_id", s.ListChangelogs)
}

func (s *Server) registerTalpaRoutes() {
	talpaGroup := s.engine.Group("/talpa")
	talpaGroup.POST("/resolve-availability", s.TalpaResolveAvailability)
	talpaGroup.POST("/resolve-price", s.TalpaResolvePrice)
	talpaGroup.POST("/resolve-right-of-purchase", s.TalpaResolveRightOfPurchase)
	talpaGroup.POST("/order", s.TalpaOrderWebhook)
}
