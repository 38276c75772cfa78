package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// secretsDir - каталог Docker Secrets. Переопределяется в тестах.
var secretsDir = "/run/secrets"

// ErrSecretNotFound - секрет не задан ни одним из источников.
var ErrSecretNotFound = errors.New("secret not found")

// Источники секрета в порядке приоритета.
const (
	SecretSourceFileEnv = "file_env"       // путь из <ENV>_FILE
	SecretSourceDocker  = "docker_secrets" // /run/secrets/<name>
	SecretSourceEnv     = "env"            // значение из <ENV>
)

// ReadSecret читает секрет из каталога Docker Secrets.
// Имя секрета - простое имя файла, пути не допускаются.
func ReadSecret(secretName string) (string, error) {
	if secretName == "" || secretName != filepath.Base(secretName) || strings.HasPrefix(secretName, ".") {
		return "", fmt.Errorf("invalid secret name %q", secretName)
	}
	return readSecretFile(filepath.Join(secretsDir, secretName))
}

// LookupSecret ищет секрет: файл из <envKey>_FILE, затем Docker Secrets, затем сама переменная envKey.
// Возвращает значение и источник. Если секрета нет нигде, ошибка оборачивает ErrSecretNotFound.
func LookupSecret(secretName, envKey string) (string, string, error) {
	if path := strings.TrimSpace(os.Getenv(envKey + "_FILE")); path != "" {
		// Явно указанный файл обязан существовать
		value, err := readSecretFile(path)
		if err != nil {
			return "", "", fmt.Errorf("%s_FILE: %w", envKey, err)
		}
		return value, SecretSourceFileEnv, nil
	}

	value, err := ReadSecret(secretName)
	if err == nil {
		return value, SecretSourceDocker, nil
	}
	if !errors.Is(err, os.ErrNotExist) && !errors.Is(err, ErrSecretNotFound) {
		return "", "", err
	}

	if value := strings.TrimSpace(os.Getenv(envKey)); value != "" {
		return value, SecretSourceEnv, nil
	}
	return "", "", fmt.Errorf("%w: %s (%s)", ErrSecretNotFound, secretName, envKey)
}

func readSecretFile(filePath string) (string, error) {
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		// Пустой файл равносилен отсутствию секрета
		return "", fmt.Errorf("%w: secret file %s is empty", ErrSecretNotFound, filePath)
	}
	return secret, nil
}
