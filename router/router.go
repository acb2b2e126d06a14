package router

import (
	"database/sql"
	"net/http"

	noteHandler "learn2learn/internal/note"
	noteRepo "learn2learn/internal/note/repository"
	noteService "learn2learn/internal/note/service"
	tagHandler "learn2learn/internal/tag"
	tagRepo "learn2learn/internal/tag/repository"
	tagService "learn2learn/internal/tag/service"
	techniqueHandler "learn2learn/internal/technique"
	techniqueRepo "learn2learn/internal/technique/repository"
	"learn2learn/middleware"
	"learn2learn/socket"
)

// Setup wires repositories, services and handlers onto a mux. rater may be
// nil when no AI credentials are configured; rating then fails upstream.
func Setup(db *sql.DB, hub *socket.Hub, rater noteService.Rater) http.Handler {
	mux := http.NewServeMux()

	// WebSocket
	wsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Context().Value(middleware.UserIDKey).(string)
		socket.ServeWs(hub, w, r, userID)
	})
	mux.Handle("/ws", middleware.AuthMiddleware(wsHandler))

	// REST API
	notes := noteHandler.NewNoteHandler(noteService.NewNoteService(noteRepo.NewNoteRepository(db), hub, rater))
	tags := tagHandler.NewTagHandler(tagService.NewTagService(tagRepo.NewTagRepository(db), hub))
	techniques := techniqueHandler.NewTechniqueHandler(techniqueRepo.NewTechniqueRepository(db))
	auth := middleware.AuthMiddleware

	mux.Handle("/api/notes/create", auth(http.HandlerFunc(notes.CreateNote)))
	mux.Handle("/api/notes", auth(http.HandlerFunc(notes.GetNotes)))
	mux.Handle("/api/notes/get", auth(http.HandlerFunc(notes.GetNote)))
	mux.Handle("/api/notes/update", auth(http.HandlerFunc(notes.UpdateNote)))
	mux.Handle("/api/notes/delete", auth(http.HandlerFunc(notes.DeleteNote)))
	mux.Handle("/api/notes/rate", auth(http.HandlerFunc(notes.RateNote)))

	mux.Handle("/api/tags/create", auth(http.HandlerFunc(tags.CreateTag)))
	mux.Handle("/api/tags", auth(http.HandlerFunc(tags.GetTags)))
	mux.Handle("/api/tags/update", auth(http.HandlerFunc(tags.UpdateTag)))
	mux.Handle("/api/tags/delete", auth(http.HandlerFunc(tags.DeleteTag)))
	mux.Handle("/api/tags/popular", auth(http.HandlerFunc(tags.PopularTags)))
	mux.Handle("/api/tags/unused", auth(http.HandlerFunc(tags.UnusedTags)))

	mux.Handle("/api/techniques", auth(http.HandlerFunc(techniques.GetTechniques)))
	mux.Handle("/api/techniques/get", auth(http.HandlerFunc(techniques.GetTechnique)))

	return middleware.CORSMiddleware(mux)
}
