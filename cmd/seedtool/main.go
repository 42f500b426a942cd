// seedtool siembra stock inicial desde un manifiesto CSV, pasando por el registro
// canónico de ubicaciones y los guardarraíles del ledger (nunca INSERT directo).
//
// Formato del CSV (sin cabecera):
//
//	tipo_ubicacion,clave_identidad,item_id,cantidad[,nota]
//
// Ej:
//
//	warehouse,primary,item-123,40,carga inicial bodega
//	vehicle,veh-7,item-123,5
//
// Uso: go run ./cmd/seedtool -file seed.csv [-actor seedtool] [-force]
// La configuración de BD se lee del entorno igual que cmd/api (DATABASE_URL, etc.).
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/fieldops/stock-ledger-api/internal/domain"
	appledger "github.com/fieldops/stock-ledger-api/internal/application/ledger"
	"github.com/fieldops/stock-ledger-api/internal/infrastructure/postgres"
	"github.com/fieldops/stock-ledger-api/pkg/config"
	"github.com/fieldops/stock-ledger-api/pkg/logger"
)

func main() {
	var (
		file  = flag.String("file", "seed.csv", "ruta del manifiesto CSV")
		actor = flag.String("actor", "seedtool", "identidad de actor registrada en cada movimiento")
		force = flag.Bool("force", false, "permite re-sembrar pares ya sembrados y superar el umbral de cantidad")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"}).Component("seedtool")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	locationRepo := postgres.NewLocationRepository(pool)
	movementRepo := postgres.NewMovementRepository(pool)
	catalogRepo := postgres.NewCatalogRepository(pool)
	txRunner := postgres.NewTxRunner(pool)
	guard := appledger.NewGuardrailValidator(appledger.PolicyFlags{
		AllowBackgroundWrites: cfg.Ledger.AllowBackgroundWrites,
		MaxUnconfirmedQty:     cfg.Ledger.MaxUnconfirmedQty,
	})
	registryUC := appledger.NewRegistryUseCase(locationRepo)
	transferUC := appledger.NewTransferUseCase(txRunner, locationRepo, catalogRepo, movementRepo, guard)
	seedUC := appledger.NewSeedUseCase(locationRepo, movementRepo, transferUC)

	f, err := os.Open(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("abrir manifiesto")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var seeded, skipped, failed int
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Error().Err(err).Int("line", line).Msg("leer fila")
			failed++
			continue
		}
		if len(record) < 4 {
			log.Error().Int("line", line).Msg("fila incompleta: se esperan tipo,clave,item,cantidad")
			failed++
			continue
		}
		locType := strings.TrimSpace(record[0])
		identityKey := strings.TrimSpace(record[1])
		itemID := strings.TrimSpace(record[2])
		qty, err := decimal.NewFromString(strings.TrimSpace(record[3]))
		if err != nil {
			log.Error().Err(err).Int("line", line).Msg("cantidad inválida")
			failed++
			continue
		}
		note := "siembra por seedtool"
		if len(record) > 4 && strings.TrimSpace(record[4]) != "" {
			note = strings.TrimSpace(record[4])
		}

		loc, err := registryUC.Ensure(locType, identityKey, "", "")
		if err != nil {
			log.Error().Err(err).Int("line", line).
				Str("type", locType).Str("identity", identityKey).
				Msg("resolver ubicación")
			failed++
			continue
		}

		result, err := seedUC.Seed(ctx, appledger.SeedInput{
			ItemID:       itemID,
			Quantity:     qty,
			ToLocationID: loc.ID,
			Note:         note,
			Actor:        *actor,
			Force:        *force,
		})
		if err != nil {
			if errors.Is(err, domain.ErrConfirmationRequired) {
				log.Warn().Int("line", line).Str("item", itemID).Str("location", loc.Code).
					Msg("siembra previa o cantidad sobre umbral: reintentar con -force")
				skipped++
				continue
			}
			log.Error().Err(err).Int("line", line).Str("item", itemID).Msg("sembrar")
			failed++
			continue
		}
		if result.Deduplicated {
			log.Info().Int("line", line).Str("movement", result.Movement.ID).Msg("siembra ya registrada (no-op)")
			skipped++
			continue
		}
		log.Info().Int("line", line).
			Str("item", itemID).Str("location", loc.Code).Str("qty", qty.String()).
			Str("movement", result.Movement.ID).
			Msg("sembrado")
		seeded++
	}

	log.Info().Int("seeded", seeded).Int("skipped", skipped).Int("failed", failed).Msg("manifiesto procesado")
	if failed > 0 {
		os.Exit(1)
	}
}
