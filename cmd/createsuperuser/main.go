// Command createsuperuser adds an administrator account that may edit the
// catalog.  The password is read from -password or, when omitted, from
// the first line of standard input.
package main

import (
    "bufio"
    "context"
    "errors"
    "flag"
    "fmt"
    "os"
    "strings"
    "time"

    "github.com/iliyamo/film-catalog/internal/config"
    "github.com/iliyamo/film-catalog/internal/database"
    "github.com/iliyamo/film-catalog/internal/logging"
    "github.com/iliyamo/film-catalog/internal/repository"
)

func main() {
    username := flag.String("username", "", "login name of the new account")
    password := flag.String("password", "", "password (read from stdin when empty)")
    flag.Parse()

    config.LoadDotEnv()
    cfg := config.Load()
    logging.Init(logging.Config{Level: cfg.LogLevel, Format: "console"})

    if strings.TrimSpace(*username) == "" {
        logging.Fatal().Msg("-username is required")
    }
    if *password == "" {
        fmt.Fprint(os.Stderr, "Password: ")
        line, err := bufio.NewReader(os.Stdin).ReadString('\n')
        if err != nil && line == "" {
            logging.Fatal().Err(err).Msg("read password")
        }
        *password = strings.TrimRight(line, "\r\n")
    }
    if *password == "" {
        logging.Fatal().Msg("empty password")
    }

    ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
    defer cancel()

    db, err := database.Open(database.Options{
        Driver: cfg.DBDriver,
        User:   cfg.DBUser,
        Pass:   cfg.DBPass,
        Host:   cfg.DBHost,
        Port:   cfg.DBPort,
        Name:   cfg.DBName,
        Path:   cfg.DBPath,
    })
    if err != nil {
        logging.Fatal().Err(err).Msg("database connection failed")
    }
    defer db.Close()
    if err := database.Migrate(ctx, db, cfg.DBDriver); err != nil {
        logging.Fatal().Err(err).Msg("migration failed")
    }

    id, err := repository.NewUserRepo(db).Create(ctx, *username, *password, true, cfg.BcryptCost)
    if errors.Is(err, repository.ErrUsernameExists) {
        logging.Fatal().Str("username", *username).Msg("username already taken")
    }
    if err != nil {
        logging.Fatal().Err(err).Msg("create user failed")
    }
    logging.Info().Uint64("id", id).Str("username", *username).Msg("superuser created")
}
