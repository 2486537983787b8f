package main

import (
	_ "retail_backoffice/docs"
	"retail_backoffice/internal/adapter/http/routes"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Retail Backoffice API
// @version         1.0
// @description     Users, catalog, carts and orders for the conversational sales agent.

// @host localhost:8080

// @BasePath  /

// @securityDefinitions.apikey ApiKey
// @in header
// @name x-api-key
// @description Required on JSON routes when BACKOFFICE_API_KEY is set.

func main() {
	routes.Run()
}
