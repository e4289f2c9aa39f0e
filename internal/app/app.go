package app

import (
	"fmt"
	"net/http"

	"github.com/pickemhq/pickem-api/internal/config"
	"github.com/pickemhq/pickem-api/internal/domain/game"
	"github.com/pickemhq/pickem-api/internal/domain/league"
	"github.com/pickemhq/pickem-api/internal/domain/matchup"
	"github.com/pickemhq/pickem-api/internal/domain/pick"
	"github.com/pickemhq/pickem-api/internal/domain/user"
	"github.com/pickemhq/pickem-api/internal/infrastructure/account/identity"
	"github.com/pickemhq/pickem-api/internal/infrastructure/repository/memory"
	"github.com/pickemhq/pickem-api/internal/infrastructure/repository/postgres"
	"github.com/pickemhq/pickem-api/internal/infrastructure/scoresfeed"
	"github.com/pickemhq/pickem-api/internal/interfaces/httpapi"
	"github.com/pickemhq/pickem-api/internal/platform/cache"
	idgen "github.com/pickemhq/pickem-api/internal/platform/id"
	"github.com/pickemhq/pickem-api/internal/platform/logging"
	"github.com/pickemhq/pickem-api/internal/usecase"
)

type repositories struct {
	games    game.Repository
	picks    pick.Repository
	leagues  league.Repository
	matchups matchup.Repository
	users    user.Repository
}

// NewHTTPServer wires repositories, services and transport into a
// ready-to-listen server. The returned cleanup releases the database
// pool and must run after shutdown.
func NewHTTPServer(cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}

	repos, cleanup, err := buildRepositories(cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	scoreCache := cache.NewStore(cfg.CacheTTL)
	if !cfg.CacheEnabled {
		scoreCache = nil
	}

	ids := idgen.NewRandomGenerator()

	gameSvc := usecase.NewGameService(repos.games)
	pickSvc := usecase.NewPickService(repos.games, repos.picks, repos.leagues, usecase.NewSheetStore())
	scoringSvc := usecase.NewScoringService(repos.games, repos.picks, repos.users, repos.leagues, scoreCache)
	leagueSvc := usecase.NewLeagueService(repos.leagues, repos.matchups, repos.users, ids)
	membershipSvc := usecase.NewMembershipService(repos.leagues, ids)
	tournamentSvc := usecase.NewTournamentService(repos.leagues, repos.matchups, repos.games, scoringSvc, ids, cfg.TournamentMinStartingWeek)

	var resultsSyncSvc *usecase.ResultsSyncService
	if cfg.ScoresFeedEnabled {
		feed := scoresfeed.NewClient(scoresfeed.ClientConfig{
			BaseURL:        cfg.ScoresFeedBaseURL,
			Token:          cfg.ScoresFeedToken,
			Timeout:        cfg.ScoresFeedTimeout,
			MaxRetries:     cfg.ScoresFeedMaxRetries,
			Logger:         logger,
			CircuitBreaker: cfg.ScoresFeedCircuit,
		})
		resultsSyncSvc = usecase.NewResultsSyncService(feed, repos.games, repos.leagues, scoringSvc, tournamentSvc, logger)
	} else {
		logger.Info("results sync disabled", "reason", "SCORES_FEED_ENABLED=false")
	}

	verifier := identity.NewClient(identity.ClientConfig{
		HTTPClient:     &http.Client{Timeout: cfg.IdentityTimeout},
		BaseURL:        cfg.IdentityBaseURL,
		IntrospectPath: cfg.IdentityIntrospectPath,
		AdminKey:       cfg.IdentityAdminKey,
		VerifyCacheTTL: cfg.IdentityVerifyCacheTTL,
		Users:          repos.users,
		Logger:         logger,
		CircuitBreaker: cfg.IdentityCircuit,
	})

	handler := httpapi.NewHandler(gameSvc, pickSvc, scoringSvc, leagueSvc, membershipSvc, tournamentSvc, resultsSyncSvc, logger)
	router := httpapi.NewRouter(handler, verifier, logger, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	if server.Addr == "" {
		cleanup() //nolint:errcheck
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	stopScheduler := StartJobScheduler(cfg, gameSvc, logger)

	return server, func() error {
		stopScheduler()
		return cleanup()
	}, nil
}

func buildRepositories(cfg config.Config, logger *logging.Logger) (repositories, func() error, error) {
	switch cfg.RepositoryMode {
	case config.RepositoryPostgres:
		db, err := openDB(cfg)
		if err != nil {
			return repositories{}, nil, err
		}
		logger.Info("repositories ready", "mode", config.RepositoryPostgres, "database", dbNameFromURL(cfg.DBURL))
		return repositories{
			games:    postgres.NewGameRepository(db),
			picks:    postgres.NewPickRepository(db),
			leagues:  postgres.NewLeagueRepository(db),
			matchups: postgres.NewMatchupRepository(db),
			users:    postgres.NewUserRepository(db),
		}, db.Close, nil
	default:
		gameRepo := memory.NewGameRepository(memory.SeedGames())
		logger.Info("repositories ready", "mode", config.RepositoryMemory)
		return repositories{
			games:    gameRepo,
			picks:    memory.NewPickRepository(gameRepo),
			leagues:  memory.NewLeagueRepository(memory.SeedLeagues()),
			matchups: memory.NewMatchupRepository(),
			users:    memory.NewUserRepository(memory.SeedUsers()),
		}, func() error { return nil }, nil
	}
}
