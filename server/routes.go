package server

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthCheck)
	s.router.GET("/stats", s.stats)

	api := s.router.Group("/api")
	{
		api.POST("/detect", s.detect)
	}
}
