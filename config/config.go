/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

// Package config assembles the tool's configuration from the
// environment, with an optional yaml file layered underneath it.
package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"syscall"

	"github.com/mitchellh/mapstructure"
	"github.com/mozilla/cert-storage-audit/kinto"
	"github.com/pkg/errors"
	"golang.org/x/crypto/ssh/terminal"
	"gopkg.in/yaml.v2"
)

const (
	// Comparison to run. One of "kinto" (cert_storage vs OneCRL),
	// "revocations" (cert_storage vs OneCRL vs revocations.txt), or
	// "ccadb" (cert_storage vs the CCADB report).
	ModeEnv = "AUDIT_MODE"
	// Path to the cert_storage sqlite snapshot. Mandatory.
	CertStorageEnv = "CERT_STORAGE"
	// Base URL for Kinto [default: Remote Settings production].
	KintoEnv = "KINTO"
	// User account for Kinto. Mutually exclusive with KintoTokenEnv.
	// If set without KintoPasswordEnv, the password is prompted for.
	KintoUserEnv = "KINTO_USER"
	// User password for Kinto. Requires KintoUserEnv to be set.
	KintoPasswordEnv = "KINTO_PASSWORD"
	// Auth token for Kinto. Mutually exclusive with KintoUserEnv
	// and KintoPasswordEnv.
	KintoTokenEnv = "KINTO_TOKEN"
	// URL for revocations.txt.
	RevocationsEnv = "REVOCATIONS_TXT"
	// URL for the CCADB revocations report [default: the public report].
	CCADBEnv = "CCADB_REPORT"
	// Optional yaml file whose values fill in anything the
	// environment left unset.
	FileEnv = "AUDIT_CONFIG"
	// Target logging level for this tool.
	//	Available: panic, fatal, error, warn, warning, info, debug, trace
	//	Default: info
	LogLevelEnv = "LOG_LEVEL"
	// Target directory for logs. Each run of the tool will be logged
	// to the timestamp of when it was ran. [default: stdout/stderr]
	LogDirEnv = "LOG_DIR"
)

type Mode string

const (
	ModeKinto       Mode = "kinto"
	ModeRevocations Mode = "revocations"
	ModeCCADB       Mode = "ccadb"
)

type Config struct {
	Mode           Mode   `mapstructure:"mode"`
	CertStorage    string `mapstructure:"certstorage"`
	Kinto          string `mapstructure:"kinto"`
	KintoUser      string `mapstructure:"kintouser"`
	KintoPassword  string `mapstructure:"kintopass"`
	KintoToken     string `mapstructure:"kintotoken"`
	RevocationsTxt string `mapstructure:"revocations"`
	CCADBReport    string `mapstructure:"ccadb"`
	LogLevel       string `mapstructure:"loglevel"`
	LogDir         string `mapstructure:"logdir"`
	// Keys from the yaml file that this tool does not recognise are
	// kept around for anything downstream that wants them.
	AdditionalConfig map[string]string
}

// FromEnvironment builds a Config from the environment, layers in the
// yaml file named by AUDIT_CONFIG (if any) for values the environment
// left unset, and validates the result. If a Kinto user is configured
// with neither a password nor a token then the password is read from
// the terminal.
func FromEnvironment() (*Config, error) {
	c := &Config{
		Mode:           Mode(os.Getenv(ModeEnv)),
		CertStorage:    os.Getenv(CertStorageEnv),
		Kinto:          os.Getenv(KintoEnv),
		KintoUser:      os.Getenv(KintoUserEnv),
		KintoPassword:  os.Getenv(KintoPasswordEnv),
		KintoToken:     os.Getenv(KintoTokenEnv),
		RevocationsTxt: os.Getenv(RevocationsEnv),
		CCADBReport:    os.Getenv(CCADBEnv),
		LogLevel:       os.Getenv(LogLevelEnv),
		LogDir:         os.Getenv(LogDirEnv),
	}
	if filename := os.Getenv(FileEnv); filename != "" {
		if err := c.loadFile(filename); err != nil {
			return nil, err
		}
	}
	if c.Kinto == "" {
		c.Kinto = kinto.DefaultBase
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	if c.KintoUser != "" && c.KintoPassword == "" && c.KintoToken == "" {
		fmt.Printf("Please enter the password for user %s\n", c.KintoUser)
		password, err := terminal.ReadPassword(int(syscall.Stdin))
		if err != nil {
			return nil, errors.Wrap(err, "failed to read the Kinto password from the terminal")
		}
		c.KintoPassword = string(password)
	}
	return c, nil
}

// loadFile copies values from a yaml file into any field the
// environment left empty. The yaml is read into a string map first so
// that unrecognised keys can be captured rather than dropped.
func (c *Config) loadFile(filename string) error {
	data, err := ioutil.ReadFile(filename)
	if err != nil {
		return errors.Wrapf(err, "failed to read config file %s", filename)
	}
	configMap := map[string]string{}
	if err := yaml.Unmarshal(data, &configMap); err != nil {
		return errors.Wrapf(err, "config file %s appears to be malformed", filename)
	}
	loaded := Config{}
	var md mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Metadata: &md,
		Result:   &loaded,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(configMap); err != nil {
		return errors.Wrapf(err, "config file %s appears to be malformed", filename)
	}
	if len(md.Unused) > 0 {
		if c.AdditionalConfig == nil {
			c.AdditionalConfig = make(map[string]string)
		}
		for _, key := range md.Unused {
			c.AdditionalConfig[key] = configMap[key]
		}
	}
	// The environment wins. The file only fills in what is unset.
	if c.Mode == "" {
		c.Mode = loaded.Mode
	}
	if c.CertStorage == "" {
		c.CertStorage = loaded.CertStorage
	}
	if c.Kinto == "" {
		c.Kinto = loaded.Kinto
	}
	if c.KintoUser == "" {
		c.KintoUser = loaded.KintoUser
	}
	if c.KintoPassword == "" {
		c.KintoPassword = loaded.KintoPassword
	}
	if c.KintoToken == "" {
		c.KintoToken = loaded.KintoToken
	}
	if c.RevocationsTxt == "" {
		c.RevocationsTxt = loaded.RevocationsTxt
	}
	if c.CCADBReport == "" {
		c.CCADBReport = loaded.CCADBReport
	}
	if c.LogLevel == "" {
		c.LogLevel = loaded.LogLevel
	}
	if c.LogDir == "" {
		c.LogDir = loaded.LogDir
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeKinto, ModeRevocations, ModeCCADB:
	case "":
		return errors.Errorf("%s must be set to one of 'kinto', 'revocations', or 'ccadb'", ModeEnv)
	default:
		return errors.Errorf("'%s' is not a comparison this tool knows. "+
			"Valid values for %s are 'kinto', 'revocations', and 'ccadb'", c.Mode, ModeEnv)
	}
	if c.CertStorage == "" {
		return errors.Errorf("%s must point at a cert_storage snapshot", CertStorageEnv)
	}
	if c.Mode == ModeRevocations && c.RevocationsTxt == "" {
		return errors.Errorf("the revocations comparison requires %s", RevocationsEnv)
	}
	return nil
}

// Principal returns an appropriate authenticator based on the
// configured credentials.
//
// If a username and password is provided, then a kinto.User will be
// returned. If a token is provided, then a kinto.Token will be
// returned. No credentials at all yields kinto.Unauthenticated. All
// other combinations are an error.
func (c *Config) Principal() (kinto.Authenticator, error) {
	user, password, token := c.KintoUser, c.KintoPassword, c.KintoToken
	if user == "" && password == "" && token == "" {
		return &kinto.Unauthenticated{}, nil
	}
	if user != "" && password != "" && token != "" ||
		user == "" && password != "" ||
		user != "" && password == "" {
		return nil, errors.New("an invalid combination of 'user', 'password', and 'token' was set")
	}
	if token != "" {
		return &kinto.Token{Token: token}, nil
	}
	return &kinto.User{Username: user, Password: password}, nil
}
