package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/dimitrije/workspace-invites/internal/services"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func newUserCommand() *cobra.Command {
	user := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}

	user.AddCommand(&cobra.Command{
		Use:   "add <email> [name]",
		Short: "Create an account that invitations can be addressed to",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := services.RegisterInput{Email: args[0]}
			if len(args) == 2 {
				input.Name = args[1]
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.users.Register(cmd.Context(), input)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", u.ID, u.Email)
			return nil
		},
	})
	return user
}

func newTokenCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "token <email>",
		Short: "Mint a bearer token for an existing account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			u, err := a.users.GetByEmail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			tok, err := a.jwt.GenerateAccessToken(u.ID, u.Email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok.Token)
			return nil
		},
	}
}

func newPendingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pending <email>",
		Short: "List pending invitations addressed to an email",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			list, err := a.invitations.ListPendingInvitations(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tWORKSPACE\tROLE\tINVITED BY\tEXPIRES")
			for _, d := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					d.Invitation.ID, d.Workspace.Name, d.Invitation.Role, d.Inviter.Email,
					d.Invitation.ExpiresAt.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func newCancelCommand() *cobra.Command {
	var actor string

	cancel := &cobra.Command{
		Use:   "cancel <invitation-id> --as <user-id>",
		Short: "Cancel a pending invitation on behalf of a workspace owner or admin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			invitationID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid invitation id %q: %w", args[0], err)
			}
			actorID, err := uuid.Parse(actor)
			if err != nil {
				return fmt.Errorf("invalid --as user id %q: %w", actor, err)
			}

			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.invitations.CancelInvitation(cmd.Context(), invitationID, actorID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cancelled invitation %s\n", invitationID)
			return nil
		},
	}
	cancel.Flags().StringVar(&actor, "as", "", "id of the owner or admin performing the cancellation")
	_ = cancel.MarkFlagRequired("as")
	return cancel
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.db.Migrate(cmd.Context()); err != nil {
				return err
			}
			a.logger.Info("migrations applied")
			return nil
		},
	}
}
