package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"google.golang.org/genai"

	"github.com/celebchat/persona-agent/internal/agent"
	"github.com/celebchat/persona-agent/internal/config"
	"github.com/celebchat/persona-agent/internal/functions"
	"github.com/celebchat/persona-agent/internal/logger"
	"github.com/celebchat/persona-agent/internal/persona"
	"github.com/celebchat/persona-agent/internal/repository"
	"github.com/celebchat/persona-agent/internal/server"
	"github.com/celebchat/persona-agent/internal/session"
)

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load(os.Getenv("PERSONA_CONFIG"))
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to load configuration")
	}

	log := logger.New(cfg.Logging)

	p, err := persona.Lookup(cfg.Persona)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to resolve persona")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	clientConfig := &genai.ClientConfig{Backend: genai.BackendGeminiAPI}
	if cfg.Backend.Vertex {
		clientConfig = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  cfg.Backend.Project,
			Location: cfg.Backend.Location,
		}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create genai client")
	}

	var archive repository.Archive
	if cfg.Mongo.URI != "" {
		mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to mongodb")
		}
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				log.Warn().Err(err).Msg("mongodb disconnect failed")
			}
		}()

		archive = repository.NewMongoArchive(mongoClient.Database(cfg.Mongo.Database), cfg.Mongo.Collection)
		log.Info().Str("database", cfg.Mongo.Database).Msg("transcript archive enabled")
	}

	var a *agent.Agent
	if archive != nil {
		a = agent.NewWithArchive(client, cfg.Model, p.Instruction, archive, log)
	} else {
		a = agent.New(client, cfg.Model, p.Instruction, log)
	}

	if err := a.AddFunctionCall(functions.CreateFilmographyFunctionDeclaration(p.Name)); err != nil {
		log.Fatal().Err(err).Msg("failed to register filmography tool")
	}

	if p.WithImageTool {
		gen := agent.NewImageGenerator(client, cfg.ImageModel, cfg.ImageDir, log)
		if err := a.AddFunctionCall(functions.CreateImageFunctionDeclaration(gen)); err != nil {
			log.Fatal().Err(err).Msg("failed to register image tool")
		}
	}

	registry := session.NewRegistry(a.NewChat)

	srv, err := server.New(server.Options{
		Host:        cfg.HTTP.Host,
		Port:        cfg.HTTP.Port,
		PersonaName: p.Name,
	}, registry, a, archive, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create http server")
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	log.Info().
		Str("persona", p.Name).
		Str("model", cfg.Model).
		Msg("persona agent started")

	select {
	case <-ctx.Done():
		if err := srv.Stop(); err != nil {
			log.Error().Err(err).Msg("shutdown failed")
		}
		<-errCh
	case err := <-errCh:
		if err != nil {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}
}
