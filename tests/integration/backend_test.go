// File: tests/integration/backend_test.go
package integration

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"sipaling_preloved_client/internal/config"
	"sipaling_preloved_client/internal/platform/localdb"
	"sipaling_preloved_client/internal/session"
	"sipaling_preloved_client/internal/transport"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// fakeBackend is an in-memory rendition of the marketplace API, faithful to
// its envelope shape, Indonesian messages and quirks (method override,
// HTML crash pages on demand).
type fakeBackend struct {
	mu sync.Mutex

	users  map[string]backendUser // by email
	tokens map[string]int         // token -> user id

	products      map[int]backendProduct
	favorites     map[int]map[int]bool // user id -> product ids
	comments      map[int][]backendComment
	notifications map[int][]backendNotification
	history       map[int]map[string]time.Time // user id -> query -> last searched

	nextUserID         int
	nextProductID      int
	nextCommentID      int
	nextNotificationID int

	// crashComments makes POST /comments answer with an HTML crash page.
	crashComments bool
}

type backendUser struct {
	ID       int
	Name     string
	Email    string
	Password string
}

type backendProduct struct {
	ID     int
	Name   string
	Price  string
	UserID int
}

type backendComment struct {
	ID        int
	ProductID int
	UserID    int
	Text      string
	ParentID  *int
}

type backendNotification struct {
	ID        int
	Type      string
	Message   string
	ProductID int
	Read      bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		users:              make(map[string]backendUser),
		tokens:             make(map[string]int),
		products:           make(map[int]backendProduct),
		favorites:          make(map[int]map[int]bool),
		comments:           make(map[int][]backendComment),
		notifications:      make(map[int][]backendNotification),
		history:            make(map[int]map[string]time.Time),
		nextUserID:         1,
		nextProductID:      1,
		nextCommentID:      1,
		nextNotificationID: 1,
	}
}

func ok(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": message, "data": data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"success": false, "message": message})
}

func (b *fakeBackend) authedUser(c *gin.Context) (int, bool) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token == "" || token == header {
		return 0, false
	}
	id, found := b.tokens[token]
	return id, found
}

func (b *fakeBackend) userJSON(u backendUser) gin.H {
	return gin.H{"id": u.ID, "name": u.Name, "email": u.Email}
}

func (b *fakeBackend) productJSON(p backendProduct, viewerID int) gin.H {
	return gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"price":       p.Price,
		"user_id":     p.UserID,
		"images":      []string{},
		"is_favorite": b.favorites[viewerID][p.ID],
		"seller_name": "penjual",
	}
}

func (b *fakeBackend) commentTreeJSON(productID int) []gin.H {
	var top []gin.H
	for _, cm := range b.comments[productID] {
		if cm.ParentID != nil {
			continue
		}
		var replies []gin.H
		for _, reply := range b.comments[productID] {
			if reply.ParentID != nil && *reply.ParentID == cm.ID {
				replies = append(replies, gin.H{
					"id": reply.ID, "product_id": reply.ProductID,
					"comment": reply.Text, "parent_comment_id": *reply.ParentID,
					"created_at": time.Now().UTC().Format(time.RFC3339),
				})
			}
		}
		top = append(top, gin.H{
			"id": cm.ID, "product_id": cm.ProductID, "comment": cm.Text,
			"replies": replies, "created_at": time.Now().UTC().Format(time.RFC3339),
		})
	}
	if top == nil {
		top = []gin.H{}
	}
	return top
}

func (b *fakeBackend) pushNotification(userID int, notifType, message string, productID int) {
	b.notifications[userID] = append(b.notifications[userID], backendNotification{
		ID:        b.nextNotificationID,
		Type:      notifType,
		Message:   message,
		ProductID: productID,
	})
	b.nextNotificationID++
}

// router assembles the gin engine for the fake backend.
func (b *fakeBackend) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(cors.Default())

	api := r.Group("/api")

	api.POST("/register", func(c *gin.Context) {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusUnprocessableEntity, "Validasi gagal")
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, exists := b.users[req.Email]; exists {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"success": false,
				"message": "Validasi gagal",
				"errors":  gin.H{"email": []string{"Email sudah terdaftar."}},
			})
			return
		}
		user := backendUser{ID: b.nextUserID, Name: req.Name, Email: req.Email, Password: req.Password}
		b.nextUserID++
		b.users[req.Email] = user
		token := uuid.NewString()
		b.tokens[token] = user.ID
		ok(c, "Registrasi berhasil", gin.H{"token": token, "user": b.userJSON(user)})
	})

	api.POST("/login", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusUnprocessableEntity, "Validasi gagal")
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		user, found := b.users[req.Email]
		if !found || user.Password != req.Password {
			fail(c, http.StatusUnauthorized, "Email atau password salah")
			return
		}
		token := uuid.NewString()
		b.tokens[token] = user.ID
		ok(c, "Login berhasil", gin.H{"token": token, "user": b.userJSON(user)})
	})

	api.POST("/logout", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		header := c.GetHeader("Authorization")
		delete(b.tokens, strings.TrimPrefix(header, "Bearer "))
		ok(c, "Logout berhasil", nil)
	})

	api.GET("/user", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		for _, u := range b.users {
			if u.ID == userID {
				ok(c, "OK", b.userJSON(u))
				return
			}
		}
		fail(c, http.StatusNotFound, "Pengguna tidak ditemukan")
	})

	api.GET("/products", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		viewerID, _ := b.authedUser(c)
		list := make([]gin.H, 0, len(b.products))
		for _, p := range b.products {
			list = append(list, b.productJSON(p, viewerID))
		}
		ok(c, "OK", list)
	})

	api.GET("/products/search", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		viewerID, _ := b.authedUser(c)
		query := strings.ToLower(c.Query("query"))
		list := make([]gin.H, 0)
		for _, p := range b.products {
			if strings.Contains(strings.ToLower(p.Name), query) {
				list = append(list, b.productJSON(p, viewerID))
			}
		}
		ok(c, "OK", list)
	})

	api.GET("/products/:id", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		viewerID, _ := b.authedUser(c)
		id, _ := strconv.Atoi(c.Param("id"))
		p, found := b.products[id]
		if !found {
			fail(c, http.StatusNotFound, "Produk tidak ditemukan")
			return
		}
		ok(c, "OK", b.productJSON(p, viewerID))
	})

	api.POST("/products", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		p := backendProduct{
			ID:     b.nextProductID,
			Name:   c.PostForm("name"),
			Price:  c.PostForm("price"),
			UserID: userID,
		}
		b.nextProductID++
		b.products[p.ID] = p
		ok(c, "Produk ditambahkan", b.productJSON(p, userID))
	})

	api.POST("/products/:id", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		if c.PostForm("_method") != "PUT" {
			fail(c, http.StatusMethodNotAllowed, "Metode tidak didukung")
			return
		}
		id, _ := strconv.Atoi(c.Param("id"))
		p, found := b.products[id]
		if !found || p.UserID != userID {
			fail(c, http.StatusNotFound, "Produk tidak ditemukan")
			return
		}
		p.Name = c.PostForm("name")
		p.Price = c.PostForm("price")
		b.products[id] = p
		ok(c, "Produk diperbarui", b.productJSON(p, userID))
	})

	api.DELETE("/products/:id", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		id, _ := strconv.Atoi(c.Param("id"))
		p, exists := b.products[id]
		if !exists || p.UserID != userID {
			fail(c, http.StatusNotFound, "Produk tidak ditemukan")
			return
		}
		delete(b.products, id)
		ok(c, "Produk dihapus", nil)
	})

	api.GET("/my-products", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		list := make([]gin.H, 0)
		for _, p := range b.products {
			if p.UserID == userID {
				list = append(list, b.productJSON(p, userID))
			}
		}
		if len(list) == 0 {
			fail(c, http.StatusNotFound, "Belum ada produk")
			return
		}
		ok(c, "OK", list)
	})

	api.GET("/favorites", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		list := make([]gin.H, 0)
		for id := range b.favorites[userID] {
			if p, exists := b.products[id]; exists {
				list = append(list, b.productJSON(p, userID))
			}
		}
		if len(list) == 0 {
			fail(c, http.StatusNotFound, "Belum ada produk favorit")
			return
		}
		ok(c, "OK", list)
	})

	api.POST("/products/:id/favorite", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		id, _ := strconv.Atoi(c.Param("id"))
		p, exists := b.products[id]
		if !exists {
			fail(c, http.StatusNotFound, "Produk tidak ditemukan")
			return
		}
		if p.UserID == userID {
			fail(c, http.StatusBadRequest, "Anda tidak bisa menambahkan produk sendiri ke wishlist")
			return
		}
		if b.favorites[userID] == nil {
			b.favorites[userID] = make(map[int]bool)
		}
		nowFavorite := !b.favorites[userID][id]
		if nowFavorite {
			b.favorites[userID][id] = true
			b.pushNotification(p.UserID, "wishlist", fmt.Sprintf("Produk %q masuk wishlist seseorang", p.Name), p.ID)
		} else {
			delete(b.favorites[userID], id)
		}
		ok(c, "OK", gin.H{"is_favorite": nowFavorite})
	})

	api.GET("/products/:id/comments", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		id, _ := strconv.Atoi(c.Param("id"))
		ok(c, "OK", b.commentTreeJSON(id))
	})

	api.POST("/comments", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.crashComments {
			c.Data(http.StatusInternalServerError, "text/html",
				[]byte("<!DOCTYPE html>\n<html><head><title>SQLSTATE[42S02]: Base table not found</title></head><body>Whoops, looks like something went wrong.</body></html>"))
			return
		}
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		var req struct {
			ProductID int    `json:"product_id"`
			Comment   string `json:"comment"`
			ParentID  *int   `json:"parent_comment_id"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusUnprocessableEntity, "Validasi gagal")
			return
		}
		cm := backendComment{
			ID:        b.nextCommentID,
			ProductID: req.ProductID,
			UserID:    userID,
			Text:      req.Comment,
			ParentID:  req.ParentID,
		}
		b.nextCommentID++
		b.comments[req.ProductID] = append(b.comments[req.ProductID], cm)
		if p, exists := b.products[req.ProductID]; exists && p.UserID != userID {
			b.pushNotification(p.UserID, "comment", fmt.Sprintf("Komentar baru di %q", p.Name), p.ID)
		}
		payload := gin.H{
			"id": cm.ID, "product_id": cm.ProductID, "comment": cm.Text,
			"created_at": time.Now().UTC().Format(time.RFC3339),
		}
		if cm.ParentID != nil {
			payload["parent_comment_id"] = *cm.ParentID
		}
		ok(c, "Komentar ditambahkan", payload)
	})

	api.GET("/notifications", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		list := make([]gin.H, 0)
		for _, n := range b.notifications[userID] {
			list = append(list, gin.H{
				"id": n.ID, "type": n.Type, "message": n.Message,
				"product_id": n.ProductID, "is_read": n.Read,
				"created_at": time.Now().UTC().Format(time.RFC3339),
			})
		}
		ok(c, "OK", list)
	})

	api.POST("/notifications/:id/read", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		id, _ := strconv.Atoi(c.Param("id"))
		for i := range b.notifications[userID] {
			if b.notifications[userID][i].ID == id {
				b.notifications[userID][i].Read = true
			}
		}
		ok(c, "OK", nil)
	})

	api.POST("/notifications/read-all", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		for i := range b.notifications[userID] {
			b.notifications[userID][i].Read = true
		}
		ok(c, "OK", nil)
	})

	api.GET("/search-history", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		list := make([]gin.H, 0)
		id := 1
		for query, at := range b.history[userID] {
			list = append(list, gin.H{"id": id, "query": query, "updated_at": at.UTC().Format(time.RFC3339Nano)})
			id++
		}
		ok(c, "OK", list)
	})

	api.POST("/search-history", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		var req struct {
			Query string `json:"query"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
			fail(c, http.StatusUnprocessableEntity, "Validasi gagal")
			return
		}
		if b.history[userID] == nil {
			b.history[userID] = make(map[string]time.Time)
		}
		b.history[userID][req.Query] = time.Now()
		ok(c, "Riwayat disimpan", nil)
	})

	api.DELETE("/search-history", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		userID, found := b.authedUser(c)
		if !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		delete(b.history, userID)
		ok(c, "Riwayat dihapus", nil)
	})

	api.POST("/fcm-token", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, found := b.authedUser(c); !found {
			fail(c, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		ok(c, "Token disimpan", nil)
	})

	return r
}

// testClient bundles everything a flow test needs against one fake backend.
type testClient struct {
	backend  *fakeBackend
	client   *transport.Client
	sessions *session.Store
	db       *gorm.DB
	logger   *zap.Logger
}

func setupTestClient(t *testing.T) *testClient {
	t.Helper()

	backend := newFakeBackend()
	server := httptest.NewServer(backend.router())
	t.Cleanup(server.Close)

	db, err := localdb.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { localdb.Close(db) })
	sessions, err := session.NewStore(db, zap.NewNop())
	require.NoError(t, err)

	cfg := &config.Config{
		APIBaseURL:  server.URL + "/api",
		HTTPTimeout: 5 * time.Second,
	}

	return &testClient{
		backend:  backend,
		client:   transport.New(cfg, zap.NewNop()),
		sessions: sessions,
		db:       db,
		logger:   zap.NewNop(),
	}
}
