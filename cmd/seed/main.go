package main

import (
	"bytes"
	"chat-core/auth"
	"chat-core/domain"
	"chat-core/internal"
	"chat-core/mailer"
	"chat-core/notification"
	"chat-core/photo"
	"chat-core/repositories"
	"chat-core/runtime/workers"
	"chat-core/services"
	"chat-core/store"
	"context"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

type member struct {
	first, last string
}

var crew = []member{
	{"Olive", "Owner"},
	{"Alice", "Smith"},
	{"Bob", "Jones"},
	{"Carol", "White"},
}

func main() {
	messages := flag.Int("messages", 120, "Number of messages posted in #general")
	force := flag.Bool("force", false, "Overwrite an existing workspace")
	flag.Parse()

	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(2)
	}
	logger := logs.GetLoggerFromString(config.LogLevel)

	if err := seed(logger, config, *messages, *force); err != nil {
		logger.Error("Seeding failed", "error", err)
		os.Exit(1)
	}
}

func seed(logger *slog.Logger, config internal.Config, messages int, force bool) error {
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer db.Close()

	repository := repositories.NewSnapshotRepository(db, logger)
	if _, found, err := repository.Load(); err != nil {
		return err
	} else if found && !force {
		return fmt.Errorf("a workspace already exists in %s, use -force to overwrite", config.BadgerFilepath)
	}

	st := store.New(logger)
	st.Subscribe(notification.NewFanout(logger))
	if err := os.MkdirAll(config.PhotoDir, 0o755); err != nil {
		return err
	}
	svc := services.New(logger, st, workers.NewScheduler(logger, time.Now),
		auth.NewTokenIssuer(config.JwtSecret, config.AuthTokenDuration),
		mailer.NewLogMailer(logger),
		photo.NewCropper(logger, &http.Client{Timeout: config.PhotoFetchTimeout}, config.PhotoDir, config.PhotoBaseURL),
		time.Now)

	ids := make([]domain.UserID, 0, len(crew))
	for _, m := range crew {
		res, err := svc.Auth.Register(fmt.Sprintf("%s.%s@chat.io", m.first, m.last), "password", m.first, m.last)
		if err != nil {
			return fmt.Errorf("registering %s: %w", m.first, err)
		}
		ids = append(ids, res.UserID)
	}
	owner, alice, bob, carol := ids[0], ids[1], ids[2], ids[3]

	if err := uploadAvatar(svc, owner); err != nil {
		return err
	}

	general, err := svc.Channels.CreateChannel(owner, "general", true)
	if err != nil {
		return err
	}
	for _, id := range []domain.UserID{alice, bob, carol} {
		if err := svc.Channels.JoinChannel(id, general); err != nil {
			return err
		}
	}
	secret, err := svc.Channels.CreateChannel(alice, "secret", false)
	if err != nil {
		return err
	}
	if err := svc.Channels.InviteToChannel(alice, secret, bob); err != nil {
		return err
	}

	var last domain.MessageID
	for i := 0; i < messages; i++ {
		author := ids[i%len(ids)]
		content := fmt.Sprintf("message number %d", i+1)
		if i%10 == 0 {
			content += " @oliveowner"
		}
		if last, err = svc.Messages.SendMessage(author, general, content); err != nil {
			return err
		}
	}
	if messages > 0 {
		if err := svc.Messages.ReactMessage(alice, last, domain.ReactLike); err != nil {
			return err
		}
		if err := svc.Messages.PinMessage(owner, last); err != nil {
			return err
		}
	}

	dm, err := svc.Dms.CreateDm(bob, []domain.UserID{carol})
	if err != nil {
		return err
	}
	if _, err := svc.Messages.SendDm(carol, dm, "see you at standup @bobjones"); err != nil {
		return err
	}

	if err := repository.Save(st.Snapshot()); err != nil {
		return err
	}
	logger.Info("Workspace seeded", "path", config.BadgerFilepath, "users", len(ids), "messages", messages+1)
	return nil
}

// uploadAvatar serves a generated JPEG locally and runs it through the
// regular profile photo path.
func uploadAvatar(svc *services.Services, id domain.UserID) error {
	data, err := gradient(200, 200)
	if err != nil {
		return err
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(data)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return svc.Users.UploadPhoto(ctx, id, srv.URL+"/avatar.jpg", photo.Crop{XStart: 20, YStart: 20, XEnd: 180, YEnd: 180})
}

func gradient(width, height int) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 255), G: 100, B: 200, A: 0xff})
		}
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
