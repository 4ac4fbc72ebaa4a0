package router

import (
	"database/sql"
	"net/http"
	"time"

	"petlink/internal/adapters/storage/files"
	mem "petlink/internal/adapters/storage/memory"
	pg "petlink/internal/adapters/storage/postgres"
	"petlink/internal/docs"
	"petlink/internal/domain/activities"
	"petlink/internal/domain/documents"
	"petlink/internal/domain/pets"
	"petlink/internal/domain/users"
	"petlink/internal/middleware"
	"petlink/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)
	Tokens       auth.TokenIssuer  // puede ser nil: register/login no devuelven token

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Logger *zap.Logger

	// Scheduler de recordatorios; nil => las actividades se guardan sin recordatorio.
	Scheduler activities.ReminderScheduler

	// Location es la zona para calcular "hoy" (edad de mascotas).
	Location *time.Location
	MaxPets  int

	// Blobs para documentos y fotos; si es nil se usa DocumentsDir en disco.
	Blobs          documents.BlobStore
	DocumentsDir   string
	MaxUploadBytes int64
}

func NewRouter(opts Options) (http.Handler, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
		httpSwagger.InstanceName(docs.SwaggerInfo.InstanceName()),
	))

	var (
		userRepo     users.Repository
		petRepo      pets.Repository
		activityRepo activities.Repository
		documentRepo documents.Repository
	)

	if db := opts.DB; db != nil {
		userRepo = pg.NewUsersRepo(db)
		petRepo = pg.NewPetsRepo(db)
		activityRepo = pg.NewActivitiesRepo(db)
		documentRepo = pg.NewDocumentsRepo(db)
	} else {
		userRepo = mem.NewUserRepo()
		petRepo = mem.NewPetRepo()
		activityRepo = mem.NewActivityRepo()
		documentRepo = mem.NewDocumentRepo()
	}

	blobs := opts.Blobs
	if blobs == nil {
		local, err := files.NewLocalStore(opts.DocumentsDir)
		if err != nil {
			return nil, err
		}
		blobs = local
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo, opts.Tokens)
	petsSvc := pets.NewService(petRepo, pets.Config{
		MaxPerOwner: opts.MaxPets,
		Location:    opts.Location,
		Photos:      blobs,
		Logger:      logger.Named("pets"),
	})
	activitiesSvc := activities.NewService(activityRepo, opts.Scheduler, usersSvc, logger.Named("activities"))
	documentsSvc := documents.NewService(documentRepo, blobs, opts.MaxUploadBytes, logger.Named("documents"))

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	pets.RegisterRoutes(r, petsSvc)
	activities.RegisterRoutes(r, activitiesSvc, petsSvc)
	documents.RegisterRoutes(r, documentsSvc, petsSvc)

	return r, nil
}
