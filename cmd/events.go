/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/useraccounts/apiserver/config"
	"github.com/useraccounts/apiserver/internal/mq"
	"github.com/useraccounts/apiserver/internal/services"
)

// eventsCmd represents the events worker command.
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Consume user lifecycle events from the configured broker",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()

		broker, err := mq.NewBackend(cmd.Context(), cfg.MQ)
		if err != nil {
			return err
		}
		if broker == nil {
			return errors.New("no message broker configured (set MQ_BACKEND)")
		}
		defer func() {
			_ = broker.Close()
		}()

		channels := []string{
			services.ChannelUserRegistered,
			services.ChannelUserUpdated,
		}

		errCh := make(chan error, len(channels))
		for _, channel := range channels {
			go func(channel string) {
				errCh <- broker.Subscribe(cmd.Context(), channel, func(ctx context.Context, msg mq.Message) error {
					fmt.Printf("[%s] id=%s %s\n", channel, msg.ID, msg.Data)
					return nil
				})
			}(channel)
		}
		return <-errCh
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
}
