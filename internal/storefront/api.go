package storefront

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/google/uuid"
)

// CartCookie names the cookie holding the cart session id
const CartCookie = "shopcheck_cart"

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// LoginRequest is the body of POST /api/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned for valid credentials
type LoginResponse struct {
	Username string `json:"username"`
}

// LoginHandler checks credentials against the configured account
type LoginHandler struct {
	username string
	password string
}

// NewLoginHandler creates a new login handler
func NewLoginHandler(username, password string) *LoginHandler {
	return &LoginHandler{
		username: username,
		password: password,
	}
}

// ServeHTTP handles the login request
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "Invalid login request", http.StatusBadRequest)
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(req.Username), []byte(h.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(req.Password), []byte(h.password)) == 1
	if !userOK || !passOK {
		log.Printf("Rejected login for %q", req.Username)
		sendErrorResponse(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	log.Printf("User %q logged in", req.Username)
	sendJSON(w, http.StatusOK, LoginResponse{Username: req.Username})
}

// CartRequest is the body of POST /api/cart
type CartRequest struct {
	Product string `json:"product"`
}

// CartResponse lists the items in the caller's cart
type CartResponse struct {
	Items []string `json:"items"`
}

// CartHandler reads and fills the caller's cart
type CartHandler struct {
	store *CartStore
}

// NewCartHandler creates a new cart handler
func NewCartHandler(store *CartStore) *CartHandler {
	return &CartHandler{store: store}
}

// ServeHTTP handles GET and POST /api/cart
func (h *CartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.add(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CartHandler) list(w http.ResponseWriter, r *http.Request) {
	items := []string{}
	if id, ok := cartSession(r); ok {
		items = append(items, h.store.Items(id)...)
	}
	sendJSON(w, http.StatusOK, CartResponse{Items: items})
}

func (h *CartHandler) add(w http.ResponseWriter, r *http.Request) {
	var req CartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "Invalid cart request", http.StatusBadRequest)
		return
	}

	id, ok := cartSession(r)
	if !ok {
		id = uuid.New().String()
		http.SetCookie(w, &http.Cookie{
			Name:     CartCookie,
			Value:    id,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	if err := h.store.Add(id, req.Product); err != nil {
		if errors.Is(err, ErrUnknownProduct) {
			sendErrorResponse(w, "Product not found: "+req.Product, http.StatusNotFound)
			return
		}
		log.Printf("Error adding to cart: %v", err)
		sendErrorResponse(w, "Failed to add product", http.StatusInternalServerError)
		return
	}

	log.Printf("Added %q to cart %s", req.Product, id)
	sendJSON(w, http.StatusCreated, CartResponse{Items: h.store.Items(id)})
}

// cartSession returns the cart id from the request cookie when it is a valid uuid
func cartSession(r *http.Request) (string, bool) {
	cookie, err := r.Cookie(CartCookie)
	if err != nil {
		return "", false
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return "", false
	}
	return cookie.Value, true
}

func sendJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// sendErrorResponse sends a JSON error response
func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
