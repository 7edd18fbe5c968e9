package main

import (
	"github.com/rohanpratim/bookworms/config"
	"github.com/rohanpratim/bookworms/models"
	"github.com/rohanpratim/bookworms/routes"
	"github.com/rohanpratim/bookworms/services"
	"github.com/rohanpratim/bookworms/store"
	"github.com/rohanpratim/bookworms/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.PostLike{},
		&models.PostBookmark{},
		&models.Comment{},
		&models.CommentReply{},
	)

	gateway := store.New(db)
	users := services.NewUserService(gateway, utils.Sugar)
	posts := services.NewPostService(gateway, utils.Sugar)

	r := routes.SetupRouter(users, posts)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
