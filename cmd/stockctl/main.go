// stockctl es la herramienta de operador del motor de existencias: rebuild
// completo, verificación de deriva y limpieza administrativa de movimientos,
// directamente contra la base de datos (sin pasar por el API).
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ntorres/acopio-api/internal/application/inventory"
	"github.com/ntorres/acopio-api/internal/infrastructure/postgres"
	"github.com/ntorres/acopio-api/pkg/config"
	"github.com/ntorres/acopio-api/pkg/logger"
)

func main() {
	root := &cobra.Command{
		Use:   "stockctl",
		Short: "Operaciones administrativas sobre el libro de existencias",
	}
	root.AddCommand(rebuildCmd(), verifyCmd(), removeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newReconcile conecta a la BD con la configuración de entorno y construye
// el caso de uso de conciliación.
func newReconcile(ctx context.Context) (*inventory.ReconcileUseCase, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: "info"})

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	uc := inventory.NewReconcileUseCase(postgres.NewTxRunner(pool), log)
	return uc, pool.Close, nil
}

func rebuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rebuild",
		Short: "Reconstruye la tabla de stock completa desde el libro de movimientos",
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, cleanup, err := newReconcile(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := uc.Rebuild(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("movimientos procesados: %d, filas cambiadas: %d (%s)\n",
				report.EntriesProcessed, report.EntriesChanged, report.Duration)
			return nil
		},
	}
}

func verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Compara el stock materializado contra el recomputado desde el libro",
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, cleanup, err := newReconcile(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			drift, err := uc.Verify(cmd.Context())
			if err != nil {
				return err
			}
			if len(drift) == 0 {
				fmt.Println("sin deriva: libro y stock materializado coinciden")
				return nil
			}
			for _, d := range drift {
				fmt.Printf("producto=%s bodega=%s materializado=%s recomputado=%s delta=%s\n",
					d.ProductID, d.WarehouseID, d.Materialized, d.Recomputed, d.Delta)
			}
			return fmt.Errorf("%d clave(s) con deriva", len(drift))
		},
	}
}

func removeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <movement-id>",
		Short: "Elimina un movimiento erróneo o de prueba y reconstruye el stock",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("movement-id inválido: %q", args[0])
			}
			uc, cleanup, err := newReconcile(cmd.Context())
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := uc.RemoveMovement(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Printf("movimiento %d eliminado; stock reconstruido (%d filas cambiadas)\n",
				id, report.EntriesChanged)
			return nil
		},
	}
}
