package main

import (
	"bufio"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"skabillium/ringq/cmd/command"
	"skabillium/ringq/cmd/db"
	"skabillium/ringq/cmd/resp"
)

type Server struct {
	addr   string
	db     *db.Database
	logger *logrus.Logger
	trace  chan<- []string

	ln     net.Listener
	quitCh chan struct{}
	wg     sync.WaitGroup

	mu    sync.Mutex
	conns map[net.Conn]struct{}

	// Held across a traced command and its trace entry so the trace
	// records commands in execution order.
	traceMu sync.Mutex
}

func NewServer(addr string, database *db.Database, logger *logrus.Logger) *Server {
	return &Server{
		addr:   addr,
		db:     database,
		logger: logger,
		quitCh: make(chan struct{}),
		conns:  make(map[net.Conn]struct{}),
	}
}

// WithTrace makes the server send every executed command that changes a
// queue to ch.
func (s *Server) WithTrace(ch chan<- []string) *Server {
	s.trace = ch
	return s
}

func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listening on %s", s.addr)
	}

	s.ln = ln
	s.logger.WithField("addr", ln.Addr().String()).Info("ringq server started")
	return nil
}

func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Start listens and serves until Stop is called.
func (s *Server) Start() error {
	if err := s.Listen(); err != nil {
		return err
	}
	s.Serve()
	return nil
}

// Serve accepts connections on a listening server and returns once the
// server is stopped and every connection is closed.
func (s *Server) Serve() {
	s.acceptLoop()
	s.wg.Wait()
}

func (s *Server) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	select {
	case <-s.quitCh:
		return
	default:
	}
	close(s.quitCh)

	if s.ln != nil {
		s.ln.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.ln.Accept()
		if err != nil {
			select {
			case <-s.quitCh:
				return
			default:
			}

			s.logger.WithError(err).Error("accept error")
			continue
		}

		s.mu.Lock()
		select {
		case <-s.quitCh:
			s.mu.Unlock()
			conn.Close()
			return
		default:
		}
		s.conns[conn] = struct{}{}
		s.wg.Add(1)
		s.mu.Unlock()

		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	log := s.logger.WithFields(logrus.Fields{
		"conn":   uuid.NewString(),
		"remote": conn.RemoteAddr().String(),
	})

	defer func() {
		if v := recover(); v != nil {
			log.WithField("panic", v).Error("connection handler panicked")
		}

		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()

		conn.Close()
		log.Debug("connection closed")
		s.wg.Done()
	}()
	log.Debug("connection opened")

	r := bufio.NewReader(conn)
	w := bufio.NewWriter(conn)
	for {
		args, inline, err := resp.ReadRequest(r)
		if err != nil {
			if errors.Is(err, resp.ErrProtocol) {
				w.WriteString(resp.SerializeError(errors.Cause(err)))
				w.Flush()
			}
			if err != io.EOF && !errors.Is(err, net.ErrClosed) {
				log.WithError(err).Warn("reading request")
			}
			return
		}

		if args == nil {
			args, err = command.Sanitize(string(inline))
			if err == nil && len(args) == 0 {
				continue
			}
		}

		reply := s.handle(log, args, err)

		out, err := resp.Serialize(reply)
		if err != nil {
			log.WithError(err).Error("serializing reply")
			out = resp.SerializeError(errors.New("ERR internal error"))
		}

		if _, err := w.WriteString(out); err != nil {
			log.WithError(err).Warn("writing reply")
			return
		}
		// Pipelined requests are answered together.
		if r.Buffered() == 0 {
			if err := w.Flush(); err != nil {
				log.WithError(err).Warn("writing reply")
				return
			}
		}
	}
}

func (s *Server) handle(log *logrus.Entry, args []string, err error) any {
	if err != nil {
		return err
	}

	cmd, err := command.Parse(args)
	if err != nil {
		log.WithError(err).Debug("invalid command")
		return err
	}

	if s.trace == nil || !cmd.Mutates() {
		reply := execute(s.db, cmd)
		log.WithField("cmd", cmd.Name).Debug("executed command")
		return reply
	}

	s.traceMu.Lock()
	defer s.traceMu.Unlock()

	reply := execute(s.db, cmd)
	log.WithField("cmd", cmd.Name).Debug("executed command")
	if _, failed := reply.(error); !failed {
		s.trace <- args
	}
	return reply
}
