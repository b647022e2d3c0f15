package storage

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/jlaffaye/ftp"

	"github.com/clouddrive/backend/internal/config"
	"github.com/clouddrive/backend/internal/models"
)

// FTPGateway stores content on a plain FTP server. Each operation dials
// a fresh connection; FTP servers close idle control connections and a
// per-call dial keeps the gateway stateless.
type FTPGateway struct {
	host     string
	port     int
	username string
	password string
	basePath string
}

func NewFTPGateway(cfg *config.Config) *FTPGateway {
	return &FTPGateway{
		host:     cfg.FTPHost,
		port:     cfg.FTPPort,
		username: cfg.FTPUsername,
		password: cfg.FTPPassword,
		basePath: cfg.FTPPath,
	}
}

func (g *FTPGateway) connect() (*ftp.ServerConn, error) {
	addr := fmt.Sprintf("%s:%d", g.host, g.port)
	conn, err := ftp.Dial(addr, ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrGatewayFailure, addr, err)
	}

	if err := conn.Login(g.username, g.password); err != nil {
		conn.Quit()
		return nil, fmt.Errorf("%w: login: %v", ErrGatewayFailure, err)
	}

	return conn, nil
}

func (g *FTPGateway) Store(ctx context.Context, data []byte, kind models.ItemKind) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, fmt.Errorf("%w: %v", ErrGatewayFailure, err)
	}

	conn, err := g.connect()
	if err != nil {
		return Object{}, err
	}
	defer conn.Quit()

	name := fmt.Sprintf("%s-%s", kind, uuid.New().String())
	remote := path.Join(g.basePath, name)

	// Ensure the base directory exists; MakeDir fails harmlessly if it does
	conn.MakeDir(g.basePath)

	if err := conn.Stor(remote, bytes.NewReader(data)); err != nil {
		return Object{}, fmt.Errorf("%w: stor %s: %v", ErrGatewayFailure, remote, err)
	}

	return Object{
		Handle: remote,
		URL:    fmt.Sprintf("ftp://%s:%d%s", g.host, g.port, remote),
	}, nil
}

func (g *FTPGateway) Destroy(ctx context.Context, handle string) error {
	conn, err := g.connect()
	if err != nil {
		return err
	}
	defer conn.Quit()

	if err := conn.Delete(handle); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrGatewayFailure, handle, err)
	}
	return nil
}
