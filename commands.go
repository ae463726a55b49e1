package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bendaklara/restaurantsaround/handlers"
	"github.com/bendaklara/restaurantsaround/models"
	"github.com/bendaklara/restaurantsaround/services"
)

func requireValue(name, value string) error {
	if value == "" {
		return fmt.Errorf("missing config value: %s", name)
	}
	return nil
}

func geocodeCmd() *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "geocode",
		Short: "Reverse geocode a coordinate and print the address",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := requireValue("MAPQUEST_KEY", cfg.GeocodeKey); err != nil {
				return err
			}

			geocoder := services.NewGeocoder(cfg, services.NewHTTPClient(cfg.HTTPTimeout))
			addr, err := geocoder.Resolve(cmd.Context(), lat, lon)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(addr)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 47.5115, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 19.02876, "longitude")
	return cmd
}

func searchCmd() *cobra.Command {
	var lat, lon float64

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Run the location pipeline for a coordinate and print the replies",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := requireValue("MAPQUEST_KEY", cfg.GeocodeKey); err != nil {
				return err
			}
			if err := requireValue("MESSENGER_WORKER_APP_ACCESS_TOKEN", cfg.WorkerAccessToken); err != nil {
				return err
			}

			bot := newBot(cfg, handlers.Options{
				SearchCategory: cfg.SearchCategory,
				MaxPlaces:      cfg.MaxPlaces,
			})
			for _, text := range bot.LocationReplies(cmd.Context(), models.Coordinates{Lat: lat, Long: lon}) {
				fmt.Fprintln(cmd.OutOrStdout(), text)
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 47.5115, "latitude")
	cmd.Flags().Float64Var(&lon, "lon", 19.02876, "longitude")
	return cmd
}

func sendCmd() *cobra.Command {
	var to, text string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a text message to a user through the Send API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := requireValue("MESSENGER_PAGE_ACCESS_TOKEN", cfg.PageAccessToken); err != nil {
				return err
			}

			messenger := services.NewMessenger(cfg, services.NewHTTPClient(cfg.HTTPTimeout))
			id, err := messenger.Send(cmd.Context(), models.OutboundMessage{RecipientID: to, Text: text})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient page-scoped id")
	cmd.Flags().StringVar(&text, "text", "", "message text")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("text")
	return cmd
}
