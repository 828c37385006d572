package worker

import (
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"beacon-core/internal/worker/tasks"
	"beacon-core/pkg/logger"
)

// Server 封装 Asynq Server (Worker)
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

// NewServer 初始化 Worker Server，sender 负责真正的 SMTP 投递
func NewServer(addr string, password string, db int, concurrency int, sender tasks.Sender) *Server {
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     addr,
			Password: password,
			DB:       db,
		},
		asynq.Config{
			Concurrency: concurrency,
			Queues: map[string]int{
				"critical": 6, // 告警邮件
				"default":  3,
			},
			Logger: logger.NewAsynqLogger(),
		},
	)

	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeEmailDelivery, tasks.NewEmailHandler(sender))

	return &Server{
		server: srv,
		mux:    mux,
	}
}

// Start 非阻塞启动 (用于集成到 main.go)
func (s *Server) Start() error {
	logger.Info("Worker Server starting...")
	if err := s.server.Start(s.mux); err != nil {
		logger.Error("Worker Server failed", zap.Error(err))
		return err
	}
	return nil
}

// Stop 停止 Worker
func (s *Server) Stop() {
	s.server.Stop()
	s.server.Shutdown()
}
