package main

import (
	"fmt"
	"os"

	"github.com/civicconnect/civicconnect-be/logger"
	"go.uber.org/zap"
)

const (
	CredentialsPathEnvVar = "GOOGLE_APPLICATION_CREDENTIALS"
	CredentialsJsonEnvVar = "GOOGLE_APPLICATION_CREDENTIALS_JSON"
	TargetCredentialsFile = "./google-application-credentials.json"
)

// configureFirebaseCredentials accepts either a credentials file path or the
// JSON itself; the JSON is written to a file the SDK can be pointed at.
func configureFirebaseCredentials() error {
	if credentialsPath, ok := os.LookupEnv(CredentialsPathEnvVar); ok {
		logger.Get().Info("using firebase credentials file", zap.String("path", credentialsPath))
		return nil
	}
	credentialsJson, ok := os.LookupEnv(CredentialsJsonEnvVar)
	if !ok {
		return fmt.Errorf("must specify either %v (a path)"+
			" or %v (credentials as JSON string)", CredentialsPathEnvVar, CredentialsJsonEnvVar)
	}
	logger.Get().Info("firebase credentials JSON detected in env")
	if err := os.WriteFile(TargetCredentialsFile, []byte(credentialsJson), 0o400); err != nil {
		return fmt.Errorf("error writing credentials to temp file, %w", err)
	}
	if err := os.Setenv(CredentialsPathEnvVar, TargetCredentialsFile); err != nil {
		return fmt.Errorf("error setting %v env var %w", CredentialsPathEnvVar, err)
	}
	return nil
}
