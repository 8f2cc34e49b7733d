package main

import (
	"context"
	"fmt"
	"os"

	"github.com/airenas/go-app/pkg/goapp"
	"github.com/alecthomas/kingpin/v2"
	"github.com/joho/godotenv"
	"github.com/labstack/gommon/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sahara-wellness/backend/internal/pkg/firestore"
	"github.com/sahara-wellness/backend/internal/pkg/postgres"
	"github.com/sahara-wellness/backend/internal/pkg/quota"
	"github.com/sahara-wellness/backend/internal/pkg/randkey"
)

var (
	app = kingpin.New("sahara-admin", "Manages API keys for the sahara backend")
	// -c is consumed by the config loader, declared here so parsing accepts it
	_ = app.Flag("c", "Config file").Short('c').String()

	addCmd   = app.Command("add", "Create a new API key")
	addLimit = addCmd.Flag("limit", "Daily request limit").Default("50").Int64()
	addKey   = addCmd.Flag("key", "Use the given key instead of generating one").String()
	keySize  = addCmd.Flag("size", "Generated key length").Default("32").Int()

	listCmd = app.Command("list", "List API keys with usage")
)

// keyManager is implemented by both quota stores
type keyManager interface {
	CreateKey(ctx context.Context, key string, limit int64) error
	ListKeys(ctx context.Context) ([]*quota.KeyRecord, error)
}

func main() {
	_ = godotenv.Load()
	goapp.StartWithDefault()
	log.Logger = goapp.Log
	zerolog.DefaultContextLogger = &goapp.Log

	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))
	if err := mainInt(context.Background(), cmd); err != nil {
		log.Fatal().Err(err).Send()
	}
}

func mainInt(ctx context.Context, cmd string) error {
	mng, clean, err := initKeyManager(ctx)
	if err != nil {
		return fmt.Errorf("init key manager: %w", err)
	}
	defer clean()

	printBanner()

	switch cmd {
	case addCmd.FullCommand():
		return addKeyCmd(ctx, mng)
	case listCmd.FullCommand():
		return listKeysCmd(ctx, mng)
	}
	return fmt.Errorf("unknown command '%s'", cmd)
}

func initKeyManager(ctx context.Context) (keyManager, func(), error) {
	st := goapp.Config.GetString("store.type")
	switch st {
	case "", "firestore":
		fs, err := firestore.NewStore(ctx, goapp.Config.GetString("firestore.project"))
		if err != nil {
			return nil, nil, err
		}
		return fs, func() { _ = fs.Close() }, nil
	case "postgres":
		db, err := postgres.NewDB(ctx, goapp.Config.GetString("db.dsn"))
		if err != nil {
			return nil, nil, err
		}
		pg, err := postgres.NewStore(db)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return pg, func() { _ = db.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown store type '%s'", st)
}

func addKeyCmd(ctx context.Context, mng keyManager) error {
	key := *addKey
	if key == "" {
		var err error
		key, err = randkey.Generate(*keySize)
		if err != nil {
			return fmt.Errorf("generate key: %w", err)
		}
	}
	if err := mng.CreateKey(ctx, key, *addLimit); err != nil {
		return fmt.Errorf("create key: %w", err)
	}
	log.Info().Int64("limit", *addLimit).Msg("Key created")
	fmt.Println(key)
	return nil
}

func listKeysCmd(ctx context.Context, mng keyManager) error {
	keys, err := mng.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("list keys: %w", err)
	}
	for _, k := range keys {
		fmt.Printf("%s\tlimit: %d\tused: %d\tlast: %s\n", k.Key, k.DailyLimit, k.UsageCount, k.LastUsedDate)
	}
	log.Info().Int("count", len(keys)).Msg("Done")
	return nil
}

var (
	version string
)

func printBanner() {
	banner := `
   _____       __                                    __          _
  / ___/____ _/ /_  ____ __________ _     ____ _____/ /___ ___  (_)___
  \__ \/ __ ` + "`" + `/ __ \/ __ ` + "`" + `/ ___/ __ ` + "`" + `/____/ __ ` + "`" + `/ __  / __ ` + "`" + `__ \/ / __ \
 ___/ / /_/ / / / / /_/ / /  / /_/ /____/ /_/ / /_/ / / / / / / / / / /
/____/\__,_/_/ /_/\__,_/_/   \__,_/     \__,_/\__,_/_/ /_/ /_/_/_/ /_/  v: %s

%s
________________________________________________________

`
	cl := color.New()
	cl.Printf(banner, cl.Red(version), cl.Green("https://github.com/sahara-wellness/backend"))
}
