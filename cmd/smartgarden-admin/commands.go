// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/danielhkuo/smartgarden/db"
	"github.com/danielhkuo/smartgarden/models"
)

// withProvisioner opens the database and runs fn against it.
func withProvisioner(fn func(ctx context.Context, c *cli.Command, p *provisioner) error) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		conn, closeFn, err := openDB(ctx, c)
		if err != nil {
			return err
		}
		defer closeFn()
		return fn(ctx, c, &provisioner{repo: db.NewRepository(conn), salt: c.String("token-salt")})
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending schema migrations",
		Action: withProvisioner(func(ctx context.Context, c *cli.Command, p *provisioner) error {
			fmt.Println("schema up to date")
			return nil
		}),
	}
}

func userCommand() *cli.Command {
	return &cli.Command{
		Name:  "user",
		Usage: "Manage users",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "username"},
					&cli.StringFlag{Name: "type", Value: string(models.UserTypeUser), Usage: "ADMIN, USER or DEVICE"},
					&cli.StringFlag{Name: "password", Usage: "enables basic auth for the user"},
				},
				Action: withProvisioner(func(ctx context.Context, c *cli.Command, p *provisioner) error {
					user, err := p.addUser(ctx, c.String("email"), c.String("username"), models.UserType(c.String("type")), c.String("password"))
					if err != nil {
						return err
					}
					fmt.Printf("created user %d (%s)\n", user.ID, user.Email)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "List users",
				Action: withProvisioner(func(ctx context.Context, c *cli.Command, p *provisioner) error {
					users, err := p.repo.ListUsers(ctx)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tEMAIL\tUSERNAME\tTYPE")
					for _, u := range users {
						username := "-"
						if u.Username != nil {
							username = *u.Username
						}
						fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", u.ID, u.Email, username, u.UserType)
					}
					return w.Flush()
				}),
			},
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Manage API tokens",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Issue a token for a user and print it once",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "name", Value: "cli", Usage: "label for the token"},
				},
				Action: withProvisioner(func(ctx context.Context, c *cli.Command, p *provisioner) error {
					if _, err := tokenSalt(c); err != nil {
						return err
					}
					token, err := p.addToken(ctx, c.String("email"), c.String("name"))
					if err != nil {
						return err
					}
					fmt.Println(token)
					return nil
				}),
			},
		},
	}
}

func circuitCommand() *cli.Command {
	return &cli.Command{
		Name:  "circuit",
		Usage: "Manage circuits",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Create a circuit",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "owner", Usage: "owner email; the owner also becomes a collaborator"},
					&cli.BoolFlag{Name: "inactive", Usage: "create the circuit switched off"},
				},
				Action: withProvisioner(func(ctx context.Context, c *cli.Command, p *provisioner) error {
					circuit, err := p.addCircuit(ctx, c.String("name"), !c.Bool("inactive"), c.String("owner"))
					if err != nil {
						return err
					}
					fmt.Printf("created circuit %d (%s)\n", circuit.ID, circuit.Name)
					return nil
				}),
			},
			{
				Name:  "list",
				Usage: "List all circuits",
				Action: withProvisioner(func(ctx context.Context, c *cli.Command, p *provisioner) error {
					circuits, err := p.repo.AllCircuits(ctx)
					if err != nil {
						return err
					}
					w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
					fmt.Fprintln(w, "ID\tNAME\tACTIVE\tCONTROLLER\tLAST HEARTBEAT")
					for _, ci := range circuits {
						controller := "-"
						if ci.ControllerID != nil {
							controller = fmt.Sprint(*ci.ControllerID)
						}
						heartbeat := "never"
						if ci.HealthCheck != nil {
							heartbeat = humanize.Time(*ci.HealthCheck)
						}
						fmt.Fprintf(w, "%d\t%s\t%t\t%s\t%s\n", ci.ID, ci.Name, ci.Active, controller, heartbeat)
					}
					return w.Flush()
				}),
			},
			{
				Name:  "delete",
				Usage: "Delete a circuit with its schedule and activations",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "id", Required: true},
				},
				Action: withProvisioner(func(ctx context.Context, c *cli.Command, p *provisioner) error {
					id := uint(c.Uint("id"))
					if err := p.repo.DeleteCircuit(ctx, id); err != nil {
						return err
					}
					fmt.Printf("deleted circuit %d\n", id)
					return nil
				}),
			},
		},
	}
}

func collaboratorCommand() *cli.Command {
	flags := func() []cli.Flag {
		return []cli.Flag{
			&cli.UintFlag{Name: "circuit", Required: true},
			&cli.StringFlag{Name: "email", Required: true},
		}
	}
	return &cli.Command{
		Name:  "collaborator",
		Usage: "Manage circuit collaborators",
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Grant a user access to a circuit",
				Flags: flags(),
				Action: withProvisioner(func(ctx context.Context, c *cli.Command, p *provisioner) error {
					return p.addCollaborator(ctx, uint(c.Uint("circuit")), c.String("email"))
				}),
			},
			{
				Name:  "remove",
				Usage: "Revoke a user's access to a circuit",
				Flags: flags(),
				Action: withProvisioner(func(ctx context.Context, c *cli.Command, p *provisioner) error {
					return p.removeCollaborator(ctx, uint(c.Uint("circuit")), c.String("email"))
				}),
			},
		},
	}
}

func controllerCommand() *cli.Command {
	return &cli.Command{
		Name:  "controller",
		Usage: "Manage circuit controllers",
		Commands: []*cli.Command{
			{
				Name:  "assign",
				Usage: "Make a DEVICE user the controller of a circuit",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "circuit", Required: true},
					&cli.StringFlag{Name: "email", Usage: "device email; empty unassigns"},
				},
				Action: withProvisioner(func(ctx context.Context, c *cli.Command, p *provisioner) error {
					return p.assignController(ctx, uint(c.Uint("circuit")), c.String("email"))
				}),
			},
		},
	}
}

func seedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load users and circuits from a YAML fixture",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true},
		},
		Action: withProvisioner(func(ctx context.Context, c *cli.Command, p *provisioner) error {
			f, err := os.Open(c.String("file"))
			if err != nil {
				return err
			}
			defer f.Close()

			fixture, err := decodeFixture(f)
			if err != nil {
				return err
			}
			tokens, err := p.seed(ctx, fixture)
			if err != nil {
				return err
			}
			for _, t := range tokens {
				fmt.Printf("%s\t%s\t%s\n", t.Email, t.Name, t.Token)
			}
			return nil
		}),
	}
}
