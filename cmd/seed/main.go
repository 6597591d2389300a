// seed crea los usuarios iniciales (admin y tecnico) en PostgreSQL si la tabla users está vacía.
//
// Uso: SEED_PASSWORD=... go run ./cmd/seed
// Aplica el esquema embebido antes de sembrar.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/Cotizaciones-api/internal/application/usecase"
	"github.com/jhoicas/Cotizaciones-api/internal/domain/entity"
	"github.com/jhoicas/Cotizaciones-api/internal/infrastructure/postgres"
	"github.com/jhoicas/Cotizaciones-api/pkg/config"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	if cfg.Seed.Password == "" {
		fmt.Fprintln(os.Stderr, "SEED_PASSWORD es obligatorio")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Conectar a PostgreSQL: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		fmt.Fprintf(os.Stderr, "Aplicar esquema: %v\n", err)
		os.Exit(1)
	}

	n, err := usecase.SeedDefaultUsers(ctx, postgres.NewUserRepository(pool), cfg.Seed.Password, bcrypt.DefaultCost,
		usecase.SeedAccount{Username: cfg.Seed.AdminUsername, Role: entity.RoleAdmin},
		usecase.SeedAccount{Username: cfg.Seed.TecnicoUsername, Role: entity.RoleTecnico},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Sembrar usuarios: %v\n", err)
		os.Exit(1)
	}
	if n == 0 {
		fmt.Println("La tabla users ya tiene datos; no se creó ningún usuario.")
		return
	}
	fmt.Printf("Usuarios iniciales creados: %d (%s, %s)\n", n, cfg.Seed.AdminUsername, cfg.Seed.TecnicoUsername)
}
