package main

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-hotel-reservations/internal/availability"
	"github.com/ariefcatur/go-hotel-reservations/internal/config"
	"github.com/ariefcatur/go-hotel-reservations/internal/dates"
	"github.com/ariefcatur/go-hotel-reservations/internal/hotel"
	"github.com/ariefcatur/go-hotel-reservations/internal/logger"
	"github.com/ariefcatur/go-hotel-reservations/internal/postgres"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
	"io"
	"sort"
	"strconv"
	"time"
)

type deps struct {
	db      *pgxpool.Pool
	catalog *postgres.CatalogRepo
	engine  *availability.Engine
}

func connect(ctx context.Context) (*deps, error) {
	cfg := config.Load()
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return nil, err
	}
	db, err := postgres.Connect(ctx, cfg.PostgresDSN, 2)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	catalog := &postgres.CatalogRepo{DB: db}
	return &deps{
		db:      db,
		catalog: catalog,
		engine:  availability.NewEngine(catalog, &postgres.ReservationRepo{DB: db}, loc, log),
	}, nil
}

func withDeps(fn func(ctx context.Context, d *deps, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		d, err := connect(ctx)
		if err != nil {
			return err
		}
		defer d.db.Close()
		return fn(ctx, d, cmd, args)
	}
}

func MigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: withDeps(func(ctx context.Context, d *deps, cmd *cobra.Command, _ []string) error {
			if err := postgres.Migrate(ctx, d.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Schema up to date.")
			return nil
		}),
	}
}

func ReconcileCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Set room occupancy from today's confirmed reservations",
		RunE: withDeps(func(ctx context.Context, d *deps, cmd *cobra.Command, _ []string) error {
			res, err := d.engine.ReconcileRoomStatuses(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated=%d skipped=%d failed=%d\n", res.Updated, res.Skipped, res.Failed)
			return nil
		}),
	}
}

func CalendarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calendar <room-or-type-id>",
		Short: "Print per-day availability for a month",
		Args:  cobra.ExactArgs(1),
		RunE: withDeps(func(ctx context.Context, d *deps, cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")
			month, _ := cmd.Flags().GetInt("month")
			m, err := zeroBasedMonth(month)
			if err != nil {
				return err
			}
			days, err := d.engine.MonthAvailability(ctx, args[0], year, m)
			if err != nil {
				return err
			}
			printCalendar(cmd.OutOrStdout(), days)
			return nil
		}),
	}
	now := time.Now()
	cmd.Flags().Int("year", now.Year(), "calendar year")
	cmd.Flags().Int("month", int(now.Month())-1, "month, 0-based (January = 0)")
	return cmd
}

func FindRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "find-room <room-or-type-id>",
		Short: "Find a free room for a stay",
		Args:  cobra.ExactArgs(1),
		RunE: withDeps(func(ctx context.Context, d *deps, cmd *cobra.Command, args []string) error {
			stay, err := stayFlags(cmd)
			if err != nil {
				return err
			}
			guests, _ := cmd.Flags().GetInt("guests")
			room, err := d.engine.FindAvailableRoom(ctx, args[0], stay, guests)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "room %s (id %s, floor %d) is free for %s\n", room.Number, room.ID, room.Floor, stay)
			return nil
		}),
	}
	cmd.Flags().String("check-in", "", "first night, YYYY-MM-DD")
	cmd.Flags().String("check-out", "", "departure day, YYYY-MM-DD")
	cmd.Flags().Int("guests", 1, "number of guests")
	_ = cmd.MarkFlagRequired("check-in")
	_ = cmd.MarkFlagRequired("check-out")
	return cmd
}

func AddRoomTypeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-room-type <name>",
		Short: "Create a room type",
		Args:  cobra.ExactArgs(1),
		RunE: withDeps(func(ctx context.Context, d *deps, cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			if id == "" {
				id = uuid.NewString()
			}
			price, _ := cmd.Flags().GetInt("price-cents")
			maxGuests, _ := cmd.Flags().GetInt("max-guests")
			capacity, _ := cmd.Flags().GetInt("capacity")
			err := d.catalog.CreateRoomType(ctx, hotel.RoomType{
				ID: id, Name: args[0], BasePriceCents: price, MaxGuests: maxGuests, Capacity: capacity,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		}),
	}
	cmd.Flags().String("id", "", "room type id (default: generated)")
	cmd.Flags().Int("price-cents", 0, "base price per night in cents")
	cmd.Flags().Int("max-guests", 2, "guest limit per room")
	cmd.Flags().Int("capacity", 1, "beds")
	return cmd
}

func AddRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add-room <number>",
		Short: "Create a room of an existing type",
		Args:  cobra.ExactArgs(1),
		RunE: withDeps(func(ctx context.Context, d *deps, cmd *cobra.Command, args []string) error {
			id, _ := cmd.Flags().GetString("id")
			if id == "" {
				id = uuid.NewString()
			}
			typeID, _ := cmd.Flags().GetString("type")
			floor, _ := cmd.Flags().GetInt("floor")
			if _, err := d.catalog.GetRoomType(ctx, typeID); err != nil {
				return fmt.Errorf("%q: %w", typeID, err)
			}
			if err := d.catalog.CreateRoom(ctx, hotel.Room{ID: id, Number: args[0], Floor: floor, RoomTypeID: typeID}); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		}),
	}
	cmd.Flags().String("id", "", "room id (default: generated)")
	cmd.Flags().String("type", "", "room type id")
	cmd.Flags().Int("floor", 0, "floor")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func MaintenanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "maintenance <room-id> on|off",
		Short:     "Take a room out of service or put it back",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"on", "off"},
		RunE: withDeps(func(ctx context.Context, d *deps, cmd *cobra.Command, args []string) error {
			on, err := onOff(args[1])
			if err != nil {
				return err
			}
			room, err := availability.NewBookings(d.engine, nil).SetMaintenance(ctx, args[0], on)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "room %s is %s\n", room.Number, room.Status())
			return nil
		}),
	}
}

func zeroBasedMonth(m int) (time.Month, error) {
	if m < 0 || m > 11 {
		return 0, hotel.ErrInvalidMonth
	}
	return time.Month(m + 1), nil
}

func stayFlags(cmd *cobra.Command) (dates.Range, error) {
	in, _ := cmd.Flags().GetString("check-in")
	out, _ := cmd.Flags().GetString("check-out")
	start, err := dates.Parse(in)
	if err != nil {
		return dates.Range{}, fmt.Errorf("check-in: %w", err)
	}
	end, err := dates.Parse(out)
	if err != nil {
		return dates.Range{}, fmt.Errorf("check-out: %w", err)
	}
	return dates.Range{Start: start, End: end}, nil
}

func onOff(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("want on or off, got %q", s)
	}
	return b, nil
}

func printCalendar(w io.Writer, days map[string]hotel.DayAvailability) {
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		c := days[k]
		mark := "full"
		if c.Available {
			mark = "open"
		}
		fmt.Fprintf(w, "%s  %s  %d/%d free\n", k, mark, c.AvailableRooms, c.TotalRooms)
	}
}
