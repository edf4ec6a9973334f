package journal

import (
	"context"
	"fmt"
	"net/url"

	"github.com/yanun0323/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	defaultPostgresHost    = "localhost"
	defaultPostgresPort    = 5432
	defaultPostgresSSLMode = "disable"
)

// PostgresOption defines connection options for the journal database.
type PostgresOption struct {
	Host       string
	Port       int
	User       string
	Password   string
	Database   string
	SSLMode    string
	Params     map[string]string
	ConnString string
	Config     *gorm.Config
}

// PostgresStore writes entries to the exchange_journal table.
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects and migrates the journal table.
func OpenPostgres(ctx context.Context, opt PostgresOption) (*PostgresStore, error) {
	dsn, err := opt.dsn()
	if err != nil {
		return nil, err
	}
	config := opt.Config
	if config == nil {
		config = &gorm.Config{}
	}

	db, err := gorm.Open(postgres.Open(dsn), config)
	if err != nil {
		return nil, errors.Wrap(err, "journal: open postgres")
	}
	if err := db.WithContext(ctx).AutoMigrate(&Entry{}); err != nil {
		return nil, errors.Wrap(err, "journal: migrate")
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Save(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).CreateInBatches(entries, len(entries)).Error; err != nil {
		return errors.Wrapf(err, "journal: insert %d entries", len(entries))
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (opt PostgresOption) dsn() (string, error) {
	if opt.ConnString != "" {
		if _, err := url.Parse(opt.ConnString); err != nil {
			return "", errors.Wrap(err, "journal: parse conn string")
		}
		return opt.ConnString, nil
	}

	host := opt.Host
	if host == "" {
		host = defaultPostgresHost
	}
	port := opt.Port
	if port == 0 {
		port = defaultPostgresPort
	}
	sslMode := opt.SSLMode
	if sslMode == "" {
		sslMode = defaultPostgresSSLMode
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", host, port),
	}
	if opt.User != "" {
		if opt.Password != "" {
			u.User = url.UserPassword(opt.User, opt.Password)
		} else {
			u.User = url.User(opt.User)
		}
	}
	if opt.Database != "" {
		u.Path = "/" + opt.Database
	}

	query := url.Values{}
	query.Set("sslmode", sslMode)
	for key, value := range opt.Params {
		if key == "" {
			continue
		}
		query.Set(key, value)
	}
	u.RawQuery = query.Encode()

	return u.String(), nil
}
