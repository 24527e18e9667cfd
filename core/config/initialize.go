package config

import (
	"fmt"
	"path/filepath"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// Initialize writes the default configuration to dir if it doesn't already
// have one and creates the log directories.
func Initialize(dir string, logger log.FieldLogger) (*Configuration, error) {
	return InitializeFs(afero.NewBasePathFs(afero.NewOsFs(), dir), logger)
}

// InitializeFs is Initialize rooted at fs.
func InitializeFs(fs afero.Fs, logger log.FieldLogger) (*Configuration, error) {
	exists, err := afero.Exists(fs, ConfigurationName)
	if err != nil {
		return nil, err
	}

	if exists {
		logger.Infof("%s already exists, leaving it alone", ConfigurationName)
	} else {
		logger.Infof("Writing %s", ConfigurationName)
		if err := afero.WriteFile(fs, ConfigurationName, defaultConfigData, 0600); err != nil {
			return nil, fmt.Errorf("writing %s: %w", ConfigurationName, err)
		}
	}

	logger.Infof("Creating %s", filepath.Join(LogsDirName, ""))
	if err := fs.MkdirAll(LogsDirName, 0700); err != nil {
		return nil, err
	}

	return LoadFs(fs)
}
