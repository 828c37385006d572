package worker

import (
	"github.com/hibiken/asynq"
)

// Client 封装 Asynq Client
type Client struct {
	*asynq.Client
}

// NewClient 初始化 Client
// addr: "localhost:6379"
func NewClient(addr string, password string, db int) *Client {
	c := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Client{Client: c}
}
