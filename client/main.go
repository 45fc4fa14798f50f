package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"skabillium/ringq/cmd/command"
)

func GetClient(ctx context.Context, addr string) (*redis.Client, error) {
	memo := redis.NewClient(&redis.Options{Addr: addr})

	if err := memo.Ping(ctx).Err(); err != nil {
		memo.Close()
		return nil, errors.Wrapf(err, "could not connect to ringq server at %s, make sure it is running", addr)
	}

	return memo, nil
}

// Run sends one command and prints its reply.
func Run(ctx context.Context, memo *redis.Client, out io.Writer, args []string) error {
	cmdArgs := make([]any, len(args))
	for i, a := range args {
		cmdArgs[i] = a
	}

	reply, err := memo.Do(ctx, cmdArgs...).Result()
	switch {
	case err == redis.Nil:
		fmt.Fprintln(out, "(nil)")
	case err != nil:
		if _, ok := err.(redis.Error); !ok {
			return err
		}
		fmt.Fprintln(out, "(error)", err)
	default:
		fmt.Fprint(out, format(reply, ""))
	}
	return nil
}

func format(reply any, indent string) string {
	switch reply := reply.(type) {
	case int64:
		return fmt.Sprintf("(integer) %d\n", reply)
	case string:
		return fmt.Sprintf("%q\n", reply)
	case nil:
		return "(nil)\n"
	case []any:
		if len(reply) == 0 {
			return "(empty array)\n"
		}
		var b strings.Builder
		for i, el := range reply {
			if i > 0 {
				b.WriteString(indent)
			}
			prefix := fmt.Sprintf("%d) ", i+1)
			b.WriteString(prefix + format(el, indent+strings.Repeat(" ", len(prefix))))
		}
		return b.String()
	}
	return fmt.Sprintln(reply)
}

// RunScript executes every line of r as a command. Blank lines and lines
// starting with '#' are skipped.
func RunScript(ctx context.Context, memo *redis.Client, r io.Reader, out io.Writer, prompt string) error {
	scanner := bufio.NewScanner(r)
	for {
		if prompt != "" {
			fmt.Fprint(out, prompt)
		}
		if !scanner.Scan() {
			break
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if line == "quit" || line == "exit" {
			return nil
		}

		args, err := command.Sanitize(line)
		if err != nil {
			fmt.Fprintln(out, "(error)", err)
			continue
		}
		if err := Run(ctx, memo, out, args); err != nil {
			return err
		}
	}
	return errors.Wrap(scanner.Err(), "reading commands")
}

func main() {
	app := &cli.App{
		Name:      "ringq-cli",
		Usage:     "send commands to a ringq server",
		ArgsUsage: "[command [args...]]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Value:   "localhost:5678",
				EnvVars: []string{"RINGQ_ADDR"},
				Usage:   "address of the ringq server",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "run the commands in this file",
			},
		},
		Action: func(c *cli.Context) error {
			ctx := c.Context
			memo, err := GetClient(ctx, c.String("addr"))
			if err != nil {
				return err
			}
			defer memo.Close()

			if c.Args().Present() {
				return Run(ctx, memo, os.Stdout, c.Args().Slice())
			}

			if name := c.String("file"); name != "" {
				file, err := os.Open(name)
				if err != nil {
					return errors.Wrap(err, "opening script")
				}
				defer file.Close()
				return RunScript(ctx, memo, file, os.Stdout, "")
			}

			return RunScript(ctx, memo, os.Stdin, os.Stdout, c.String("addr")+"> ")
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
