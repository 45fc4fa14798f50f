// Command test drives a running ringq server with random commands and checks
// every reply against a slice based model of the queue.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"reflect"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

type model []string

func (m model) deleteMid() model {
	mid := len(m) / 2
	return append(m[:mid:mid], m[mid+1:]...)
}

func (m model) deleteDup() model {
	count := map[string]int{}
	for _, v := range m {
		count[v]++
	}
	out := model{}
	for _, v := range m {
		if count[v] == 1 {
			out = append(out, v)
		}
	}
	return out
}

func (m model) swap() model {
	out := append(model{}, m...)
	for i := 0; i+1 < len(out); i += 2 {
		out[i], out[i+1] = out[i+1], out[i]
	}
	return out
}

func (m model) reverse() model {
	out := make(model, len(m))
	for i, v := range m {
		out[len(m)-1-i] = v
	}
	return out
}

func (m model) sorted() model {
	out := append(model{}, m...)
	sort.SliceStable(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Check runs steps random commands against key and returns the first
// mismatch between the server and the model.
func Check(memo *redis.Client, key string, steps int, seed int64) error {
	r := rand.New(rand.NewSource(seed))
	if err := memo.Do(ctx, "new", key).Err(); err != nil {
		return err
	}
	defer memo.Do(ctx, "free", key)

	m := model{}
	for i := 0; i < steps; i++ {
		value := strconv.Itoa(r.Intn(16))

		var op string
		switch r.Intn(10) {
		case 0, 1:
			op = "ih"
			m = append(model{value}, m...)
			if err := memo.Do(ctx, op, key, value).Err(); err != nil {
				return err
			}
		case 2, 3:
			op = "it"
			m = append(m, value)
			if err := memo.Do(ctx, op, key, value).Err(); err != nil {
				return err
			}
		case 4:
			op = "rh"
			v, err := memo.Do(ctx, op, key).Text()
			if len(m) == 0 {
				if err != redis.Nil {
					return fmt.Errorf("step %d: expected nil from rh, got %q %v", i, v, err)
				}
				break
			}
			if err != nil || v != m[0] {
				return fmt.Errorf("step %d: expected %q from rh, got %q %v", i, m[0], v, err)
			}
			m = m[1:]
		case 5:
			op = "rt"
			v, err := memo.Do(ctx, op, key).Text()
			if len(m) == 0 {
				if err != redis.Nil {
					return fmt.Errorf("step %d: expected nil from rt, got %q %v", i, v, err)
				}
				break
			}
			if err != nil || v != m[len(m)-1] {
				return fmt.Errorf("step %d: expected %q from rt, got %q %v", i, m[len(m)-1], v, err)
			}
			m = m[:len(m)-1]
		case 6:
			op = "dm"
			err := memo.Do(ctx, op, key).Err()
			if len(m) == 0 {
				if err == nil {
					return fmt.Errorf("step %d: expected dm on an empty queue to fail", i)
				}
				break
			}
			if err != nil {
				return err
			}
			m = m.deleteMid()
		case 7:
			op = "dedup"
			m = m.deleteDup()
			if err := memo.Do(ctx, op, key).Err(); err != nil {
				return err
			}
		case 8:
			op = []string{"swap", "reverse"}[r.Intn(2)]
			if op == "swap" {
				m = m.swap()
			} else {
				m = m.reverse()
			}
			if err := memo.Do(ctx, op, key).Err(); err != nil {
				return err
			}
		default:
			op = "sort"
			m = m.sorted()
			if err := memo.Do(ctx, op, key).Err(); err != nil {
				return err
			}
		}

		values, err := memo.Do(ctx, "show", key).StringSlice()
		if err != nil {
			return err
		}
		if !reflect.DeepEqual(values, []string(m)) {
			return fmt.Errorf("step %d (%s): expected %v, got %v", i, op, m, values)
		}
	}

	return nil
}

type options struct {
	addr  string
	steps int
	seed  int64
}

func optionsFromContext(c *cli.Context) (options, error) {
	opts := options{
		addr:  c.String("addr"),
		steps: c.Int("steps"),
		seed:  c.Int64("seed"),
	}
	if opts.steps <= 0 {
		return opts, errors.Errorf("steps must be positive, got %d", opts.steps)
	}
	return opts, nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ringq-check",
		Usage: "check a running ringq server against a model queue",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Value:   "localhost:5678",
				EnvVars: []string{"RINGQ_ADDR"},
				Usage:   "address of the ringq server",
			},
			&cli.IntFlag{Name: "steps", Aliases: []string{"n"}, Value: 1000, Usage: "number of random commands"},
			&cli.Int64Flag{Name: "seed", Aliases: []string{"s"}, Value: 1, Usage: "random seed"},
		},
		Action: func(c *cli.Context) error {
			opts, err := optionsFromContext(c)
			if err != nil {
				return err
			}

			memo := GetClient(opts.addr)
			defer memo.Close()

			if err := memo.Ping(ctx).Err(); err != nil {
				return errors.Wrapf(err, "could not connect to ringq server at %s, make sure it is running", opts.addr)
			}

			if err := Check(memo, "ringq:check", opts.steps, opts.seed); err != nil {
				return errors.Wrap(err, "check failed")
			}
			log.WithFields(log.Fields{"steps": opts.steps, "seed": opts.seed}).Info("check passed")
			return nil
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
