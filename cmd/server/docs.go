package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Insight Valuation API
// @version         0.1.0
// @description     Insights, scope rules, effect channels and insight-adjusted valuation previews.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
