// 为已存在的用户签发访问令牌，便于本地联调
//
// 用法: go run scripts/issue_token.go -user 42

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"quiz_agent_backend/internal/config"
	"quiz_agent_backend/internal/repository"
	"quiz_agent_backend/internal/util"
	"quiz_agent_backend/pkg/database"
	"quiz_agent_backend/pkg/logger"
)

func main() {
	userID := flag.Uint("user", 0, "用户ID")
	flag.Parse()

	if *userID == 0 {
		log.Fatal("请通过 -user 指定用户ID")
	}

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	user, err := repository.NewUserRepository(db).FindByID(context.Background(), *userID)
	if err != nil {
		log.Fatalf("查询用户失败: %v", err)
	}

	token, err := util.GenerateJWT(user, cfg.JWT.Secret, cfg.JWT.ExpireTime)
	if err != nil {
		log.Fatalf("签发令牌失败: %v", err)
	}

	fmt.Println(token)
}
