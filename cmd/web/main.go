// @title           Recruit Portal API
// @version         1.0
// @description     Кредиты, подписки и роли рекрутинговых услуг.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	_ "recruitportal_backend/docs"
	"recruitportal_backend/internal/app"
)

func main() {
	app.Run()
}
