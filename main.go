/* This Source Code Form is subject to the terms of the Mozilla Public
 * License, v. 2.0. If a copy of the MPL was not distributed with this
 * file, You can obtain one at http://mozilla.org/MPL/2.0/. */

package main // import "github.com/mozilla/cert-storage-audit"

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mozilla/cert-storage-audit/audit"
	"github.com/mozilla/cert-storage-audit/ccadb"
	"github.com/mozilla/cert-storage-audit/certstorage"
	"github.com/mozilla/cert-storage-audit/config"
	"github.com/mozilla/cert-storage-audit/kinto"
	"github.com/mozilla/cert-storage-audit/revocations"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

func main() {
	env := filepath.Join(filepath.Dir(os.Args[0]), "config.env")
	if len(os.Args) > 1 {
		env = os.Args[1]
	}
	if err := godotenv.Load(env); err != nil && len(os.Args) > 1 {
		// An explicitly named env file has to load. The implicit
		// config.env next to the binary is allowed to be absent.
		fmt.Fprintf(os.Stderr, "%s appears to be malformed, err: %v\n", env, err)
		os.Exit(1)
	}
	_main()
}

// _main is just a unit testable main (since main is looking at command
// line args and loading configs from the filesystem it's not a great
// target for testing).
func _main() {
	if err := setLogOut(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "failed to set logging out file, err: %v\n", err)
		os.Exit(1)
	}
	level, err := parseLogLevel()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "unexpected logging level %s\n", os.Getenv(config.LogLevelEnv))
		_, _ = fmt.Fprint(os.Stderr, "expected one of either panic, fatal, error, warn, warning, info, debug, trace")
		os.Exit(1)
	}
	log.SetLevel(level)
	log.SetReportCaller(true)
	log.SetFormatter(&log.JSONFormatter{PrettyPrint: true})
	conf, err := config.FromEnvironment()
	if err != nil {
		log.WithError(err).Fatal("configuration failed")
	}
	report, err := run(conf)
	if err != nil {
		log.WithError(err).Error("audit failed")
		os.Exit(1)
	}
	serialized, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.WithError(err).Error("failed to serialize the report")
		os.Exit(1)
	}
	fmt.Println(string(serialized))
	log.Info("audit completed")
}

// run loads cert_storage, fetches whichever feeds the configured
// comparison needs, and builds that comparison's report.
func run(conf *config.Config) (interface{}, error) {
	certStorage, err := loadCertStorage(conf.CertStorage)
	if err != nil {
		return nil, err
	}
	log.WithField("records", len(certStorage)).Info("loaded cert_storage")
	switch conf.Mode {
	case config.ModeKinto:
		onecrl, err := loadKinto(conf)
		if err != nil {
			return nil, err
		}
		return audit.NewStorageKintoReport(certStorage, onecrl), nil
	case config.ModeRevocations:
		onecrl, err := loadKinto(conf)
		if err != nil {
			return nil, err
		}
		revs, err := revocations.FromURL(conf.RevocationsTxt)
		if err != nil {
			return nil, err
		}
		revocationsSet, err := audit.FromRevocations(revs)
		if err != nil {
			return nil, err
		}
		log.WithField("records", len(revocationsSet)).Info("loaded revocations.txt")
		return audit.NewThreeWayReport(certStorage, onecrl, revocationsSet), nil
	case config.ModeCCADB:
		report, err := loadCCADB(conf.CCADBReport)
		if err != nil {
			return nil, err
		}
		ccadbSet, err := audit.FromCCADB(report)
		if err != nil {
			return nil, err
		}
		log.WithField("records", len(ccadbSet)).Info("loaded the CCADB report")
		return audit.NewStorageCCADBReport(certStorage, ccadbSet), nil
	default:
		return nil, errors.Errorf("unknown comparison mode '%s'", conf.Mode)
	}
}

func loadCertStorage(path string) (audit.Set, error) {
	store, err := certstorage.OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	it, err := store.Iter()
	if err != nil {
		return nil, err
	}
	storage, err := certstorage.Load(it)
	if err != nil {
		return nil, err
	}
	return audit.FromCertStorage(storage)
}

func loadKinto(conf *config.Config) (audit.Set, error) {
	client, err := kinto.NewClientFromStr(conf.Kinto)
	if err != nil {
		return nil, errors.Wrap(err, "failed to construct the Kinto client")
	}
	principal, err := conf.Principal()
	if err != nil {
		return nil, errors.Wrap(err, "failed to set Kinto credentials")
	}
	onecrl := kinto.NewOneCRL()
	if err := client.WithAuthenticator(principal).AllRecords(onecrl); err != nil {
		return nil, errors.Wrap(err, "failed to retrieve OneCRL")
	}
	set, err := audit.FromKinto(onecrl)
	if err != nil {
		return nil, err
	}
	log.WithField("records", len(set)).Info("loaded OneCRL")
	return set, nil
}

func loadCCADB(url string) (ccadb.Report, error) {
	if url == "" {
		return ccadb.Default()
	}
	return ccadb.FromURL(url)
}

func parseLogLevel() (log.Level, error) {
	l := os.Getenv(config.LogLevelEnv)
	if l == "" {
		return log.InfoLevel, nil
	}
	return log.ParseLevel(l)
}

func setLogOut() error {
	logDir := os.Getenv(config.LogDirEnv)
	if logDir == "" {
		// Use stdout/stderr
		return nil
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}
	out, err := os.Create(filepath.Join(logDir, time.Now().UTC().Format(time.RFC3339)))
	if err != nil {
		return err
	}
	log.SetOutput(out)
	return nil
}
