package util

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
)

func Pprint(i interface{}) {
	bytes, err := json.MarshalIndent(i, "", "    ")
	if err != nil {
		panic(err)
	}
	fmt.Println(string(bytes))
}

func FloatPointer(f float64) *float64 {
	return &f
}

func DecimalPointer(d decimal.Decimal) *decimal.Decimal {
	return &d
}

type Secrets struct {
	ChatGPTApiKey string        `json:"gpt"`
	Alpaca        AlpacaSecrets `json:"alpaca"`
	SES           SESSecrets    `json:"ses"`
}

type AlpacaSecrets struct {
	ApiKey    string `json:"apiKey"`
	ApiSecret string `json:"apiSecret"`
	Endpoint  string `json:"endpoint"`
}

type SESSecrets struct {
	Region    string `json:"region"`
	FromEmail string `json:"fromEmail"`
}

func secretsFile() string {
	if f := os.Getenv("MOOD_SECRETS"); f != "" {
		return f
	}
	switch os.Getenv("MOOD_ENV") {
	case "dev":
		return "secrets-dev.json"
	case "test":
		return "secrets-test.json"
	}
	return "secrets.json"
}

// LoadSecrets reads API credentials. A missing file is not an error,
// every integration that needs a secret degrades when it is empty.
func LoadSecrets() (*Secrets, error) {
	secrets := Secrets{}

	f, err := os.ReadFile(secretsFile())
	if os.IsNotExist(err) {
		return &secrets, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open secrets file: %w", err)
	}

	err = json.Unmarshal(f, &secrets)
	if err != nil {
		return nil, fmt.Errorf("failed to parse secrets file: %w", err)
	}

	return &secrets, nil
}
