package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses all configuration flags from args (usually os.Args[1:]).
//
// Flags:
//
//	-a http server address in format [host]:[port]
//	-grpc-address grpc server address in format [host]:[port]
//	-d database DSN
//	-key-file vault key file path
//	-c/-config json file path with configs
//	-adapter-url list source base URL
//	-adapter-timeout bound of a single adapter call (e.g., "30s")
//	-poll-interval scheduler tick (e.g., "5m")
//	-max-history retained results per group
//	-fetch-concurrency parallel adapter calls per cycle
//	-token-sign-key token signing key
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-redis-address redis address host:port
func ParseFlags(args []string) (*StructuredConfig, error) {
	var serverAddress, grpcServerAddress NetAddress
	var databaseDSN, keyFile, jsonConfigPath string
	var adapterURL, tokenSignKey, redisAddress string
	var adapterTimeout, pollInterval, requestTimeout time.Duration
	var maxHistory, fetchConcurrency int

	fs := flag.NewFlagSet("list-sync", flag.ContinueOnError)
	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.Var(&grpcServerAddress, "grpc-address", "Net grpc server address host:port")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&keyFile, "key-file", "", "Vault key file path")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&adapterURL, "adapter-url", "", "List source base URL")
	fs.DurationVar(&adapterTimeout, "adapter-timeout", 0, "Adapter call timeout (e.g., 30s)")
	fs.DurationVar(&pollInterval, "poll-interval", 0, "Scheduler poll interval (e.g., 5m)")
	fs.IntVar(&maxHistory, "max-history", 0, "Retained sync results per group")
	fs.IntVar(&fetchConcurrency, "fetch-concurrency", 0, "Parallel adapter calls per cycle")
	fs.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	fs.StringVar(&redisAddress, "redis-address", "", "Redis address host:port")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			TokenSignKey: tokenSignKey,
		},
		Storage: Storage{
			DB: DB{
				DSN: databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			GRPCAddress:    grpcServerAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			BaseURL: adapterURL,
			Timeout: adapterTimeout,
		},
		Sync: Sync{
			PollInterval:     pollInterval,
			MaxHistory:       maxHistory,
			FetchConcurrency: fetchConcurrency,
		},
		Vault: Vault{
			KeyFile: keyFile,
		},
		Redis: Redis{
			Address: redisAddress,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress, or an empty
// string if neither Host nor Port are set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// An empty host listens on all interfaces. It validates the port range, checks
// IP correctness unless host is "localhost", and returns an error if the format
// or values are invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1..65535")
	}

	if host != "" && host != "localhost" {
		ip := net.ParseIP(host)
		if ip == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
