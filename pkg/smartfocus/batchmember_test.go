package smartfocus

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type recordedRequest struct {
	Method      string
	Path        string
	ContentType string
	Body        string
}

// fakeService replays a canned status and body and records what it received.
type fakeService struct {
	mu       sync.Mutex
	status   int
	reply    string
	requests []recordedRequest
}

func (f *fakeService) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{
		Method:      r.Method,
		Path:        r.URL.EscapedPath(),
		ContentType: r.Header.Get("Content-Type"),
		Body:        string(body),
	})
	status, reply := f.status, f.reply
	f.mu.Unlock()

	w.WriteHeader(status)
	_, _ = w.Write([]byte(reply))
}

func (f *fakeService) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	Expect(f.requests).NotTo(BeEmpty())
	return f.requests[len(f.requests)-1]
}

// countingClient counts requests without sending them.
type countingClient struct {
	calls int
}

func (c *countingClient) Get(context.Context, string) (string, error) {
	c.calls++
	return "", nil
}

func (c *countingClient) Post(context.Context, string, string) (string, error) {
	c.calls++
	return "", nil
}

func (c *countingClient) Put(context.Context, string, http.Header, string) (string, error) {
	c.calls++
	return "", nil
}

var _ = Describe("BatchMember", func() {
	var (
		ctx     context.Context
		service *fakeService
		server  *httptest.Server
		client  *BatchMember
		csvPath string
	)

	BeforeEach(func() {
		ctx = context.Background()
		service = &fakeService{status: http.StatusOK}
		server = httptest.NewServer(service)
		DeferCleanup(server.Close)

		var err error
		client, err = NewBatchMember("", WithBaseURL(server.URL+batchMemberPath))
		Expect(err).NotTo(HaveOccurred())

		csvPath = filepath.Join(GinkgoT().TempDir(), "members.csv")
		Expect(os.WriteFile(csvPath, []byte("EMAIL,FIRSTNAME\nann@example.com,Ann\n"), 0o600)).To(Succeed())
	})

	Describe("NewBatchMember", func() {
		It("derives the service URL from the server host", func() {
			b, err := NewBatchMember("p1apie.emv2.com")
			Expect(err).NotTo(HaveOccurred())
			Expect(b.baseURL).To(Equal("https://p1apie.emv2.com/apibatchmember/services/rest"))
		})

		It("requires a server", func() {
			_, err := NewBatchMember("")
			Expect(err).To(HaveOccurred())
		})

		It("requires a transport", func() {
			_, err := NewBatchMember("example.com", WithTransport(nil))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("OpenConnection", func() {
		It("returns the session token", func() {
			service.reply = "<response><result>token-123</result></response>"

			token, err := client.OpenConnection(ctx, "user", "p@ss/word", "key")
			Expect(err).NotTo(HaveOccurred())
			Expect(token).To(Equal("token-123"))

			req := service.last()
			Expect(req.Method).To(Equal(http.MethodGet))
			Expect(req.Path).To(Equal(batchMemberPath + "/connect/open/user/p@ss%2Fword/key"))
		})

		It("surfaces a server description as an API error", func() {
			service.reply = "<response><description>Bad login</description></response>"

			_, err := client.OpenConnection(ctx, "user", "wrong", "key")
			Expect(err).To(HaveOccurred())
			Expect(IsAPIError(err)).To(BeTrue())
			Expect(err.Error()).To(Equal("Bad login"))
		})

		It("surfaces a description sent with an error status as an API error", func() {
			service.status = http.StatusUnauthorized
			service.reply = "<response><description>Bad login</description></response>"

			_, err := client.OpenConnection(ctx, "user", "wrong", "key")
			Expect(IsAPIError(err)).To(BeTrue())
		})

		It("keeps the status error when the body is not a description", func() {
			service.status = http.StatusInternalServerError
			service.reply = "gateway exploded"

			_, err := client.OpenConnection(ctx, "user", "pass", "key")
			Expect(err).To(HaveOccurred())
			var statusErr *Error
			Expect(err).To(BeAssignableToTypeOf(statusErr))
		})

		It("reports malformed responses", func() {
			service.reply = "<html>oops"

			_, err := client.OpenConnection(ctx, "user", "pass", "key")
			Expect(IsMalformedResponse(err)).To(BeTrue())
		})

		It("rejects empty credentials without sending a request", func() {
			_, err := client.OpenConnection(ctx, "", "pass", "key")
			Expect(err).To(MatchError(ErrInvalidURL))
			Expect(service.requests).To(BeEmpty())
		})
	})

	Describe("CloseConnection", func() {
		It("closes the token", func() {
			service.reply = "<response><result>connection closed</result></response>"

			Expect(client.CloseConnection(ctx, "token-123")).To(Succeed())
			Expect(service.last().Path).To(Equal(batchMemberPath + "/connect/close/token-123"))
		})
	})

	Describe("uploads", func() {
		BeforeEach(func() {
			service.reply = "<response><result>upload-9</result></response>"
		})

		It("declares the boundary written into the insert body", func() {
			id, err := client.InsertFile(ctx, "tok", UploadRequest{FilePath: csvPath, DateFormat: "yyyy-MM-dd", Dedup: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("upload-9"))

			req := service.last()
			Expect(req.Method).To(Equal(http.MethodPut))
			Expect(req.Path).To(Equal(batchMemberPath + "/batchmemberservice/tok/batchmember/insertUpload"))

			boundary, err := ExtractBoundary(req.Body)
			Expect(err).NotTo(HaveOccurred())
			Expect(req.ContentType).To(Equal("multipart/form-data; boundary=" + boundary))
			Expect(req.Body).To(ContainSubstring("<dedup>"))
		})

		It("sends updates to mergeUpload", func() {
			id, err := client.UpdateFile(ctx, "tok", UploadRequest{FilePath: csvPath, DateFormat: "dd/MM/yyyy"})
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal("upload-9"))

			req := service.last()
			Expect(req.Path).To(Equal(batchMemberPath + "/batchmemberservice/tok/batchmember/mergeUpload"))
			Expect(req.Body).To(ContainSubstring("name='mergeUpload'"))
			Expect(req.Body).To(ContainSubstring("<fieldName>EMAIL</fieldName></column>"))
		})

		It("uses the configured builder", func() {
			codec := fixedCodec(1, time.UnixMicro(2))
			b, err := NewBatchMember("", WithBaseURL(server.URL+batchMemberPath), WithUploadBuilder(NewUploadBuilder(codec)))
			Expect(err).NotTo(HaveOccurred())

			_, err = b.InsertFile(ctx, "tok", UploadRequest{FilePath: csvPath, DateFormat: "yyyy-MM-dd"})
			Expect(err).NotTo(HaveOccurred())
			Expect(service.last().ContentType).To(Equal("multipart/form-data; boundary=" + codec.Generate()))
		})

		It("rejects a body without a boundary before any network call", func() {
			counter := &countingClient{}
			b, err := NewBatchMember("example.com", WithTransport(counter))
			Expect(err).NotTo(HaveOccurred())

			_, err = b.Insert(ctx, "tok", "--\r\nContent-Type: text/xml\r\n")
			Expect(err).To(MatchError(ErrInvalidFormat))
			_, err = b.Update(ctx, "tok", "garbage")
			Expect(err).To(MatchError(ErrInvalidFormat))
			Expect(counter.calls).To(BeZero())
		})

		It("fails on unreadable files before any network call", func() {
			counter := &countingClient{}
			b, err := NewBatchMember("example.com", WithTransport(counter))
			Expect(err).NotTo(HaveOccurred())

			_, err = b.InsertFile(ctx, "tok", UploadRequest{FilePath: filepath.Join(GinkgoT().TempDir(), "none.csv")})
			Expect(err).To(MatchError(ErrInvalidInput))
			Expect(counter.calls).To(BeZero())
		})

		It("reports quota errors from the server", func() {
			service.reply = "<response><description>Quota exceeded</description></response>"

			_, err := client.UpdateFile(ctx, "tok", UploadRequest{FilePath: csvPath, DateFormat: "yyyy-MM-dd"})
			var apiErr *APIError
			Expect(err).To(BeAssignableToTypeOf(apiErr))
			Expect(err.Error()).To(Equal("Quota exceeded"))
		})
	})
})
