package main

import (
	"fmt"
	"time"

	"github.com/Freeeeeet/appointment_bot/internal/model"
	"github.com/Freeeeeet/appointment_bot/internal/service"
	"github.com/spf13/cobra"
)

// slots печатает сетку без обращения к базе, DB_DSN не нужен
func newSlotsCmd() *cobra.Command {
	var (
		from string
		days int
	)

	cfg := model.DefaultSlotConfig()

	cmd := &cobra.Command{
		Use:   "slots",
		Short: "Print the slot lattice for the next business days",
		RunE: func(cmd *cobra.Command, args []string) error {
			start := model.DateOf(time.Now())
			if from != "" {
				d, err := model.ParseDate(from)
				if err != nil {
					return err
				}
				start = d
			}

			out := cmd.OutOrStdout()
			for _, slot := range service.GenerateSlots(cfg, start, days) {
				fmt.Fprintf(out, "%s %s %s\n", slot.Date, slot.Time, slot.Doctor)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first date, YYYY-MM-DD (default today)")
	cmd.Flags().IntVar(&days, "days", 0, "business days to generate (default from config)")
	cmd.Flags().IntVar(&cfg.StartHour, "start-hour", cfg.StartHour, "first hour of the working day")
	cmd.Flags().IntVar(&cfg.EndHour, "end-hour", cfg.EndHour, "hour the working day ends")
	cmd.Flags().IntVar(&cfg.SlotDurationMinutes, "duration", cfg.SlotDurationMinutes, "slot length in minutes")
	cmd.Flags().StringVar(&cfg.DoctorName, "doctor", cfg.DoctorName, "doctor name")

	return cmd
}
