package main

import (
	"bufio"
	"context"
	"io"
	"net"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"skabillium/ringq/cmd/command"
	"skabillium/ringq/cmd/db"
	"skabillium/ringq/cmd/resp"
)

var ctx = context.Background()

func startServer(t *testing.T, trace chan<- []string) (*Server, *redis.Client) {
	t.Helper()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	server := NewServer("127.0.0.1:0", db.NewDatabase(), logger)
	if trace != nil {
		server.WithTrace(trace)
	}
	if err := server.Listen(); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		server.Serve()
		close(done)
	}()

	client := redis.NewClient(&redis.Options{Addr: server.Addr().String()})
	t.Cleanup(func() {
		client.Close()
		server.Stop()
		<-done
	})

	return server, client
}

func TestServerQueueCommands(t *testing.T) {
	_, memo := startServer(t, nil)

	if pong, err := memo.Ping(ctx).Result(); pong != "PONG" || err != nil {
		t.Fatal("Expected Ping() to return PONG, got", pong, err)
	}

	if size, err := memo.Do(ctx, "it", "fruits", "banana", "apple").Int(); size != 2 || err != nil {
		t.Error("Expected 'it' to return 2, got", size, err)
	}
	if size, err := memo.Do(ctx, "ih", "fruits", "cherry").Int(); size != 3 || err != nil {
		t.Error("Expected 'ih' to return 3, got", size, err)
	}
	if size, err := memo.Do(ctx, "size", "fruits").Int(); size != 3 || err != nil {
		t.Error("Expected 'size' to return 3, got", size, err)
	}

	if res, err := memo.Do(ctx, "sort", "fruits").Text(); res != "OK" || err != nil {
		t.Error("Expected 'sort' to return OK, got", res, err)
	}
	values, err := memo.Do(ctx, "show", "fruits").StringSlice()
	if err != nil || !reflect.DeepEqual(values, []string{"apple", "banana", "cherry"}) {
		t.Error("Expected sorted fruits, got", values, err)
	}

	memo.Do(ctx, "reverse", "fruits")
	if v, err := memo.Do(ctx, "rh", "fruits").Text(); v != "cherry" || err != nil {
		t.Error("Expected 'rh' to return cherry, got", v, err)
	}
	if v, err := memo.Do(ctx, "rt", "fruits", "4").Text(); v != "app" || err != nil {
		t.Error("Expected 'rt' with a 4 byte buffer to return app, got", v, err)
	}
	if v, err := memo.Do(ctx, "rt", "fruits").Text(); v != "banana" || err != nil {
		t.Error("Expected 'rt' to return banana, got", v, err)
	}
	if err := memo.Do(ctx, "rh", "fruits").Err(); err != redis.Nil {
		t.Error("Expected 'rh' on an empty queue to return nil, got", err)
	}
	if err := memo.Do(ctx, "dm", "fruits").Err(); err == nil || err.Error() != "ERR queue is empty" {
		t.Error("Expected 'dm' on an empty queue to fail, got", err)
	}

	keys, err := memo.Do(ctx, "keys").StringSlice()
	if err != nil || !reflect.DeepEqual(keys, []string{"fruits"}) {
		t.Error("Expected keys to be [fruits], got", keys, err)
	}

	if res, err := memo.Do(ctx, "free", "fruits").Text(); res != "OK" || err != nil {
		t.Error("Expected 'free' to return OK, got", res, err)
	}
	if size, err := memo.Do(ctx, "size", "fruits").Int(); size != 0 || err != nil {
		t.Error("Expected 'size' of a freed queue to be 0, got", size, err)
	}
}

func TestServerTransforms(t *testing.T) {
	_, memo := startServer(t, nil)

	memo.Do(ctx, "it", "q", "a", "b", "a", "c", "b", "d")
	memo.Do(ctx, "dedup", "q")
	if values, _ := memo.Do(ctx, "show", "q").StringSlice(); !reflect.DeepEqual(values, []string{"c", "d"}) {
		t.Error("Expected 'dedup' to leave [c d], got", values)
	}

	memo.Do(ctx, "it", "q", "e", "f")
	memo.Do(ctx, "swap", "q")
	if values, _ := memo.Do(ctx, "show", "q").StringSlice(); !reflect.DeepEqual(values, []string{"d", "c", "f", "e"}) {
		t.Error("Expected 'swap' to leave [d c f e], got", values)
	}

	memo.Do(ctx, "dm", "q")
	if values, _ := memo.Do(ctx, "show", "q").StringSlice(); !reflect.DeepEqual(values, []string{"d", "c", "e"}) {
		t.Error("Expected 'dm' to leave [d c e], got", values)
	}
}

func TestServerErrors(t *testing.T) {
	_, memo := startServer(t, nil)

	if err := memo.Do(ctx, "qadd", "q", "1").Err(); err == nil || err.Error() != "ERR unknown command 'qadd'" {
		t.Error("Expected unknown command error, got", err)
	}
	if err := memo.Do(ctx, "sort").Err(); err == nil {
		t.Error("Expected an error for a missing key")
	}
	if err := memo.Do(ctx, "swap", "missing").Err(); err == nil || err.Error() != "ERR no such queue" {
		t.Error("Expected no such queue error, got", err)
	}

	// The connection stays usable after errors.
	if pong, err := memo.Ping(ctx).Result(); pong != "PONG" || err != nil {
		t.Error("Expected Ping() to work after errors")
	}
}

func TestServerPipeline(t *testing.T) {
	_, memo := startServer(t, nil)

	cmds, err := memo.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, v := range []string{"c", "a", "b"} {
			pipe.Do(ctx, "it", "q", v)
		}
		pipe.Do(ctx, "sort", "q")
		pipe.Do(ctx, "rh", "q")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(cmds) != 5 {
		t.Fatal("Expected 5 replies, got", len(cmds))
	}
	if v, err := cmds[4].(*redis.Cmd).Text(); v != "a" || err != nil {
		t.Error("Expected the last pipelined reply to be a, got", v, err)
	}
}

func TestServerInline(t *testing.T) {
	server, _ := startServer(t, nil)

	conn, err := net.DialTimeout("tcp", server.Addr().String(), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	r := bufio.NewReader(conn)
	conn.Write([]byte("it q \"hello world\" bye\r\n\r\nshow q\r\nih q \"oops\r\n"))

	if v, err := resp.Read(r); v != 2 || err != nil {
		t.Error("Expected inline 'it' to return 2, got", v, err)
	}
	if v, err := resp.Read(r); !reflect.DeepEqual(v, []any{"hello world", "bye"}) || err != nil {
		t.Error("Expected inline 'show' to return the values, got", v, err)
	}
	v, err := resp.Read(r)
	if e, ok := v.(error); !ok || err != nil || e.Error() != "ERR unbalanced quotes" {
		t.Error("Expected unbalanced quotes error, got", v, err)
	}
}

func TestServerTrace(t *testing.T) {
	trace := make(chan []string, 16)
	_, memo := startServer(t, trace)

	memo.Do(ctx, "it", "q", "a")
	memo.Do(ctx, "show", "q")
	memo.Do(ctx, "swap", "missing")
	memo.Do(ctx, "reverse", "q")

	expected := [][]string{{"it", "q", "a"}, {"reverse", "q"}}
	for _, want := range expected {
		select {
		case got := <-trace:
			if !reflect.DeepEqual(got, want) {
				t.Error("Expected trace entry", want, "got", got)
			}
		case <-time.After(time.Second):
			t.Fatal("Expected trace entry", want)
		}
	}

	select {
	case got := <-trace:
		t.Error("Unexpected trace entry", got)
	default:
	}
}

func TestServerTraceOrder(t *testing.T) {
	const workers, rounds = 8, 50

	trace := make(chan []string, workers*rounds*3)
	_, memo := startServer(t, trace)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < rounds; i++ {
				memo.Do(ctx, "ih", "q", strconv.Itoa(w*rounds+i))
				memo.Do(ctx, "reverse", "q")
				if i%3 == 0 {
					memo.Do(ctx, "rt", "q")
				}
			}
		}(w)
	}
	wg.Wait()
	close(trace)

	replay := db.NewDatabase()
	for args := range trace {
		cmd, err := command.Parse(args)
		if err != nil {
			t.Fatal(err)
		}
		execute(replay, cmd)
	}

	expected, err := memo.Do(ctx, "show", "q").StringSlice()
	if err != nil {
		t.Fatal(err)
	}
	got, err := replay.Show("q")
	if err != nil || !reflect.DeepEqual(got, expected) {
		t.Error("Expected replaying the trace to rebuild the queue, got", got, "want", expected)
	}
}

func TestServerRejectsHugeLengths(t *testing.T) {
	server, memo := startServer(t, nil)

	for _, req := range []string{"*9223372036854775807\r\n", "*1\r\n$9223372036854775806\r\n"} {
		conn, err := net.DialTimeout("tcp", server.Addr().String(), time.Second)
		if err != nil {
			t.Fatal(err)
		}
		conn.SetDeadline(time.Now().Add(time.Second))
		conn.Write([]byte(req))

		v, err := resp.Read(bufio.NewReader(conn))
		if e, ok := v.(error); !ok || err != nil || !strings.HasPrefix(e.Error(), "ERR protocol error") {
			t.Errorf("Expected a protocol error for %q, got %v %v", req, v, err)
		}
		conn.Close()
	}

	if pong, err := memo.Ping(ctx).Result(); pong != "PONG" || err != nil {
		t.Error("Expected the server to keep serving, got", pong, err)
	}
}

func TestServerInlineTypeBytes(t *testing.T) {
	server, _ := startServer(t, nil)

	conn, err := net.DialTimeout("tcp", server.Addr().String(), time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(time.Second))

	r := bufio.NewReader(conn)
	conn.Write([]byte("+foo bar\r\n:1\r\nping\r\n"))

	for _, name := range []string{"+foo", ":1"} {
		v, err := resp.Read(r)
		if e, ok := v.(error); !ok || err != nil || !strings.Contains(e.Error(), name) {
			t.Errorf("Expected an unknown command error for %s, got %v %v", name, v, err)
		}
	}
	if v, err := resp.Read(r); v != resp.SimpleString("PONG") || err != nil {
		t.Error("Expected the connection to stay open, got", v, err)
	}
}
