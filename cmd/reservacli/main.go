// Command reservacli manages room reservations from the terminal. It
// drives the same lifecycle controller as the server, backed by the REST
// gateway, so conflict checks run locally before any network round trip.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/example/room-reservations/internal/application"
	"github.com/example/room-reservations/internal/booking"
	"github.com/example/room-reservations/internal/gateway"
	"github.com/example/room-reservations/internal/grid"
	"github.com/example/room-reservations/internal/timeutil"
)

const usage = `uso: reservacli [opciones] <comando> [opciones del comando]

comandos:
  list                       lista todas las reservas
  create                     crea una reserva
  update                     modifica una reserva
  delete                     elimina una reserva
  semana                     muestra la grilla semanal de una sala
  historial                  busca en el historial de reservas

opciones globales:
  -server URL                servidor de reservas (RESERVAS_SERVER, por defecto http://localhost:3001)
  -user USUARIO              usuario (RESERVAS_USER)
  -pass CONTRASEÑA           contraseña (RESERVAS_PASSWORD)
`

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], logger); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, logger *slog.Logger) error {
	global := flag.NewFlagSet("reservacli", flag.ContinueOnError)
	server := global.String("server", envOr("RESERVAS_SERVER", "http://localhost:3001"), "servidor de reservas")
	user := global.String("user", os.Getenv("RESERVAS_USER"), "usuario")
	pass := global.String("pass", os.Getenv("RESERVAS_PASSWORD"), "contraseña")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }

	if err := global.Parse(args); err != nil {
		return err
	}
	rest := global.Args()
	if len(rest) == 0 {
		global.Usage()
		return fmt.Errorf("falta el comando")
	}

	if *user == "" || *pass == "" {
		return fmt.Errorf("debe indicar usuario y contraseña (-user / -pass)")
	}

	gw := gateway.NewRESTGateway(*server, nil, logger)
	if err := gw.Authenticate(ctx, *user, *pass); err != nil {
		return err
	}

	service := application.NewReservationService(gw, nil, grid.DefaultConfig(), time.Now, logger)
	if err := service.Hydrate(ctx); err != nil {
		return err
	}

	principal := application.Principal{Username: *user}

	switch rest[0] {
	case "list":
		return runList(ctx, service)
	case "create":
		return runCreate(ctx, service, principal, rest[1:])
	case "update":
		return runUpdate(ctx, service, principal, rest[1:])
	case "delete":
		return runDelete(ctx, service, principal, rest[1:])
	case "semana":
		return runWeek(ctx, service, rest[1:])
	case "historial":
		return runSearch(ctx, service, rest[1:])
	default:
		global.Usage()
		return fmt.Errorf("comando desconocido: %s", rest[0])
	}
}

func envOr(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func runList(ctx context.Context, service *application.ReservationService) error {
	printReservations(service.ListReservations(ctx))
	return nil
}

func reservationFlags(fs *flag.FlagSet) *application.ReservationInput {
	input := &application.ReservationInput{}
	fs.StringVar(&input.Room, "sala", "", "sala (A, B, ...)")
	fs.StringVar(&input.Date, "fecha", "", "fecha (aaaa-mm-dd)")
	fs.StringVar(&input.Start, "inicio", "", "hora de inicio (HH:MM)")
	fs.StringVar(&input.End, "fin", "", "hora de fin (HH:MM)")
	fs.StringVar(&input.Requester, "persona", "", "quién reserva")
	fs.StringVar(&input.Sector, "area", "", "área solicitante")
	fs.StringVar(&input.Reason, "motivo", "", "motivo (opcional)")
	return input
}

func runCreate(ctx context.Context, service *application.ReservationService, principal application.Principal, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	input := reservationFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	created, err := service.CreateReservation(ctx, application.CreateReservationParams{
		Principal: principal,
		Input:     *input,
	})
	if err != nil {
		return describeError(err)
	}
	fmt.Printf("reserva %d creada: sala %s, %s %s-%s\n", created.ID, created.Room, created.Date, created.Start, created.End)
	return nil
}

func runUpdate(ctx context.Context, service *application.ReservationService, principal application.Principal, args []string) error {
	fs := flag.NewFlagSet("update", flag.ContinueOnError)
	id := fs.Int64("id", 0, "identificador de la reserva")
	input := reservationFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("debe indicar -id")
	}

	updated, err := service.UpdateReservation(ctx, application.UpdateReservationParams{
		Principal:     principal,
		ReservationID: *id,
		Input:         *input,
	})
	if err != nil {
		return describeError(err)
	}
	fmt.Printf("reserva %d actualizada: sala %s, %s %s-%s\n", updated.ID, updated.Room, updated.Date, updated.Start, updated.End)
	return nil
}

func runDelete(ctx context.Context, service *application.ReservationService, principal application.Principal, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	id := fs.Int64("id", 0, "identificador de la reserva")
	assumeYes := fs.Bool("si", false, "no preguntar antes de eliminar")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return fmt.Errorf("debe indicar -id")
	}

	confirmed := *assumeYes
	if !confirmed {
		fmt.Printf("¿Eliminar la reserva %d? [s/N] ", *id)
		reader := bufio.NewReader(os.Stdin)
		answer, _ := reader.ReadString('\n')
		confirmed = strings.EqualFold(strings.TrimSpace(answer), "s")
	}

	err := service.DeleteReservation(ctx, application.DeleteReservationParams{
		Principal:     principal,
		ReservationID: *id,
		Confirm:       confirmed,
	})
	if err != nil {
		if !confirmed {
			fmt.Println("eliminación cancelada")
			return nil
		}
		return describeError(err)
	}
	fmt.Printf("reserva %d eliminada\n", *id)
	return nil
}

func runWeek(ctx context.Context, service *application.ReservationService, args []string) error {
	fs := flag.NewFlagSet("semana", flag.ContinueOnError)
	room := fs.String("sala", "A", "sala (A, B, ...)")
	date := fs.String("fecha", "", "una fecha dentro de la semana (aaaa-mm-dd)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	reference := time.Now()
	if *date != "" {
		parsed, err := timeutil.ParseISODate(*date)
		if err != nil {
			return fmt.Errorf("fecha inválida %q, use aaaa-mm-dd", *date)
		}
		reference = parsed
	}

	week, err := service.WeekGrid(ctx, *room, reference)
	if err != nil {
		return describeError(err)
	}
	renderWeek(os.Stdout, *room, week)
	return nil
}

func runSearch(ctx context.Context, service *application.ReservationService, args []string) error {
	fs := flag.NewFlagSet("historial", flag.ContinueOnError)
	term := fs.String("q", "", "texto a buscar (persona, área o fecha)")
	room := fs.String("sala", "", "filtrar por sala")
	page := fs.Int("pagina", 1, "número de página")
	size := fs.Int("por-pagina", 10, "resultados por página")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result := service.SearchReservations(ctx, application.SearchReservationsParams{
		Term:     *term,
		Room:     *room,
		Page:     *page,
		PageSize: *size,
	})
	printReservations(result.Reservations)
	fmt.Printf("página %d de %d (%d reservas)\n", result.Page, result.TotalPages, result.Total)
	return nil
}

func printReservations(reservations []booking.Reservation) {
	if len(reservations) == 0 {
		fmt.Println("sin reservas")
		return
	}
	fmt.Printf("%-6s %-5s %-12s %-11s %-20s %-15s %s\n", "ID", "SALA", "FECHA", "HORARIO", "PERSONA", "ÁREA", "MOTIVO")
	for _, r := range reservations {
		fmt.Printf("%-6d %-5s %-12s %s-%s %-20s %-15s %s\n",
			r.ID, r.Room, r.Date, r.Start, r.End, r.Requester, r.Sector, r.Reason)
	}
}

func describeError(err error) error {
	var cErr *application.ConflictError
	if errors.As(err, &cErr) {
		c := cErr.Conflicting
		return fmt.Errorf("la sala %s ya está reservada el %s de %s a %s (reserva %d de %s)",
			c.Room, c.Date, c.Start, c.End, c.ID, c.Requester)
	}
	var vErr *application.ValidationError
	if errors.As(err, &vErr) {
		lines := make([]string, 0, len(vErr.FieldErrors))
		for field, msg := range vErr.FieldErrors {
			lines = append(lines, field+": "+msg)
		}
		return fmt.Errorf("datos inválidos: %s", strings.Join(lines, "; "))
	}
	return err
}
