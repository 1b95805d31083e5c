package router

import (
	"net/http"

	"shopfloor-tracker/internal/http/handlers"
)

func New(tasks *handlers.TaskHandler, floor *handlers.FloorHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /tasks", tasks.Assign)
	mux.HandleFunc("GET /tasks", tasks.List)
	mux.HandleFunc("GET /tasks/{id}", tasks.Get)
	mux.HandleFunc("POST /tasks/{id}/claim", tasks.Claim)
	mux.HandleFunc("POST /tasks/{id}/events", tasks.RecordEvent)
	mux.HandleFunc("GET /tasks/{id}/events", tasks.Events)
	mux.HandleFunc("POST /tasks/{id}/withdraw", tasks.Withdraw)
	mux.HandleFunc("GET /workers/{id}/tasks", tasks.WorkerTasks)

	mux.HandleFunc("GET /live", floor.Live)
	mux.HandleFunc("POST /machines/{id}/stop", floor.Stop)
	mux.HandleFunc("POST /machines/{id}/start", floor.Start)

	mux.HandleFunc("GET /reports", floor.Report)
	mux.HandleFunc("GET /reports/daily", floor.Daily)
	mux.HandleFunc("GET /reports/weekly", floor.Weekly)
	mux.HandleFunc("GET /reports/workers/{id}", floor.WorkerPerformance)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}
