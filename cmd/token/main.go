// token emite un JWT de operador firmado con JWT_SECRET para llamar a la API.
//
// Uso:
//
//	go run ./cmd/token -subject bodega-1 -ttl 8h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/stock-tracker/pkg/config"
	"github.com/jhoicas/stock-tracker/pkg/jwt"
)

func main() {
	subject := flag.String("subject", "", "operador identificado por el token")
	ttl := flag.Duration("ttl", 8*time.Hour, "vigencia del token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}

	token, err := mint(cfg.JWT, *subject, *ttl)
	if err != nil {
		fmt.Fprintf(os.Stderr, "emitir token: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(token)
}

func mint(cfg config.JWTConfig, subject string, ttl time.Duration) (string, error) {
	if cfg.Secret == "" {
		return "", fmt.Errorf("JWT_SECRET no configurado: la API corre sin autenticación")
	}
	if subject == "" {
		return "", fmt.Errorf("-subject es obligatorio")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("-ttl debe ser positivo")
	}
	return jwt.Generate(cfg.Secret, subject, cfg.Issuer, ttl)
}
