package server

import (
	"encoding/json"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Anuragsahu418/Educhat/internal/handler"
	"github.com/Anuragsahu418/Educhat/internal/upload"
)

const (
	maxUploadMemory  = 10 << 20
	sessionCookieAge = 3600
)

type RESTServer struct {
	logger        *zap.Logger
	authHandler   *handler.AuthHandler
	messages      *handler.MessageHandler
	announcements *handler.AnnouncementHandler
	uploads       *upload.Storage
	middleware    *AuthMiddleware
	origin        *OriginChecker
	secureCookies bool
}

func NewRESTServer(
	logger *zap.Logger,
	authHandler *handler.AuthHandler,
	messages *handler.MessageHandler,
	announcements *handler.AnnouncementHandler,
	uploads *upload.Storage,
	middleware *AuthMiddleware,
	origin *OriginChecker,
	secureCookies bool,
) *RESTServer {
	return &RESTServer{
		logger:        logger,
		authHandler:   authHandler,
		messages:      messages,
		announcements: announcements,
		uploads:       uploads,
		middleware:    middleware,
		origin:        origin,
		secureCookies: secureCookies,
	}
}

func (s *RESTServer) Register(router *mux.Router) {
	router.Use(s.cors)

	authRouter := router.PathPrefix("/api/auth").Subrouter()
	authRouter.HandleFunc("/signup", s.handleSignup).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/login", s.handleLogin).Methods("POST", "OPTIONS")
	authRouter.HandleFunc("/logout", s.handleLogout).Methods("POST", "OPTIONS")

	protectedAuthRouter := router.PathPrefix("/api/auth").Subrouter()
	protectedAuthRouter.Use(s.middleware.Protect)
	protectedAuthRouter.HandleFunc("/check", s.handleCheck).Methods("GET", "OPTIONS")
	protectedAuthRouter.HandleFunc("/update-profile", s.handleUpdateProfile).Methods("PUT", "OPTIONS")

	messageRouter := router.PathPrefix("/api/messages").Subrouter()
	messageRouter.Use(s.middleware.Protect)
	messageRouter.HandleFunc("/users", s.handleListUsers).Methods("GET", "OPTIONS")
	messageRouter.HandleFunc("/send/{id}", s.handleSendMessage).Methods("POST", "OPTIONS")
	messageRouter.HandleFunc("/clear/{id}", s.handleClearChat).Methods("DELETE", "OPTIONS")
	messageRouter.HandleFunc("/{id}", s.handleConversation).Methods("GET", "OPTIONS")
	messageRouter.HandleFunc("", s.handleDeleteMessages).Methods("DELETE", "OPTIONS")

	announcementRouter := router.PathPrefix("/api/announcements").Subrouter()
	announcementRouter.Use(s.middleware.Protect)
	announcementRouter.HandleFunc("/create", s.handleCreateAnnouncement).Methods("POST", "OPTIONS")
	announcementRouter.HandleFunc("", s.handleListAnnouncements).Methods("GET", "OPTIONS")

	router.PathPrefix(upload.URLPrefix).Handler(
		http.StripPrefix(upload.URLPrefix, http.FileServer(http.Dir(s.uploads.Dir()))))

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

func (s *RESTServer) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.origin.Allowed())
		w.Header().Set("Access-Control-Allow-Credentials", "true")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")

		if r.Method == http.MethodOptions {
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *RESTServer) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req handler.SignupRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	_, err = s.authHandler.Signup(r.Context(), req)
	if err != nil {
		respondError(s.logger, w, err)
		return
	}

	respondMessage(w, http.StatusCreated, "user created successfully")
}

func (s *RESTServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req handler.LoginRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, token, err := s.authHandler.Login(r.Context(), req)
	if err != nil {
		respondError(s.logger, w, err)
		return
	}

	s.setSessionCookie(w, token, sessionCookieAge)
	respondJSON(w, http.StatusOK, user)
}

func (s *RESTServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.setSessionCookie(w, "", -1)
	respondMessage(w, http.StatusOK, "logged out successfully")
}

func (s *RESTServer) handleCheck(w http.ResponseWriter, r *http.Request) {
	user, err := s.authHandler.Check(r.Context())
	if err != nil {
		respondError(s.logger, w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (s *RESTServer) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req handler.UpdateProfileRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.authHandler.UpdateProfile(r.Context(), req)
	if err != nil {
		respondError(s.logger, w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

func (s *RESTServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.messages.ListUsers(r.Context())
	if err != nil {
		respondError(s.logger, w, err)
		return
	}

	respondJSON(w, http.StatusOK, users)
}

func (s *RESTServer) handleConversation(w http.ResponseWriter, r *http.Request) {
	partnerId := mux.Vars(r)["id"]

	messages, err := s.messages.Conversation(r.Context(), partnerId)
	if err != nil {
		respondError(s.logger, w, err)
		return
	}

	respondJSON(w, http.StatusOK, messages)
}

// handleSendMessage accepts either a multipart form (text field plus an
// optional image file) or a plain JSON body with a text field.
func (s *RESTServer) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	req := handler.SendMessageRequest{
		ReceiverID: mux.Vars(r)["id"],
	}

	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
		err := r.ParseMultipartForm(maxUploadMemory)
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "invalid multipart form")
			return
		}

		req.Text = r.FormValue("text")

		file, header, err := r.FormFile("image")
		if err == nil {
			imageUrl, err := s.storeUpload(header.Filename, file)
			if err != nil {
				respondError(s.logger, w, err)
				return
			}

			req.Image = imageUrl
		}
	} else {
		var body struct {
			Text string `json:"text"`
		}
		err := json.NewDecoder(r.Body).Decode(&body)
		if err != nil {
			respondMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}

		req.Text = body.Text
	}

	message, err := s.messages.Send(r.Context(), req)
	if err != nil {
		respondError(s.logger, w, err)
		return
	}

	respondJSON(w, http.StatusCreated, message)
}

func (s *RESTServer) handleDeleteMessages(w http.ResponseWriter, r *http.Request) {
	var req handler.DeleteMessagesRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = s.messages.Delete(r.Context(), req)
	if err != nil {
		respondError(s.logger, w, err)
		return
	}

	respondMessage(w, http.StatusOK, "messages deleted successfully")
}

func (s *RESTServer) handleClearChat(w http.ResponseWriter, r *http.Request) {
	partnerId := mux.Vars(r)["id"]

	err := s.messages.ClearChat(r.Context(), partnerId)
	if err != nil {
		respondError(s.logger, w, err)
		return
	}

	respondMessage(w, http.StatusOK, "chat cleared successfully")
}

func (s *RESTServer) handleCreateAnnouncement(w http.ResponseWriter, r *http.Request) {
	err := r.ParseMultipartForm(maxUploadMemory)
	if err != nil {
		respondMessage(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	req := handler.CreateAnnouncementRequest{
		Text: r.FormValue("text"),
	}

	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			file, err := header.Open()
			if err != nil {
				respondMessage(w, http.StatusBadRequest, "invalid file upload")
				return
			}

			fileUrl, err := s.storeUpload(header.Filename, file)
			if err != nil {
				respondError(s.logger, w, err)
				return
			}

			req.Files = append(req.Files, fileUrl)
		}
	}

	announcement, err := s.announcements.Create(r.Context(), req)
	if err != nil {
		respondError(s.logger, w, err)
		return
	}

	respondJSON(w, http.StatusCreated, announcement)
}

func (s *RESTServer) handleListAnnouncements(w http.ResponseWriter, r *http.Request) {
	announcements, err := s.announcements.List(r.Context())
	if err != nil {
		respondError(s.logger, w, err)
		return
	}

	respondJSON(w, http.StatusOK, announcements)
}

func (s *RESTServer) storeUpload(filename string, file multipart.File) (string, error) {
	defer file.Close()

	return s.uploads.Save(filename, file)
}

func (s *RESTServer) setSessionCookie(w http.ResponseWriter, token string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}
