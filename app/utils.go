package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
)

const (
	maxJSONBytes      = 1 << 20
	maxMultipartBytes = 10 << 20

	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

type envelope map[string]any

func (app *application) writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.MarshalIndent(data, "", "\t")
	if err != nil {
		return err
	}

	for key, values := range headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(js)

	return nil
}

// writeResponse writes the success envelope shared by every endpoint.
func (app *application) writeResponse(w http.ResponseWriter, r *http.Request, status int, data any, message string) {
	if data == nil {
		data = struct{}{}
	}

	err := app.writeJSON(w, status, envelope{"statusCode": status, "data": data, "message": message}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxJSONBytes))

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	err := decoder.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("request body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("request body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("request body contains an invalid value for the %q field", unmarshalTypeError.Field)
			}
			return fmt.Errorf("request body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("request body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("request body contains unknown field %s", fieldName)
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("request body must not be larger than %d bytes", maxBytesError.Limit)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = decoder.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("request body must only contain a single JSON value")
	}

	return nil
}

func (app *application) readIDParam(r *http.Request, key string) (int64, error) {
	params := httprouter.ParamsFromContext(r.Context())

	id, err := strconv.ParseInt(params.ByName(key), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s parameter", key)
	}

	return id, nil
}

// readPageLimitParams returns zero for an absent page or limit so the service
// applies its own default.
func (app *application) readPageLimitParams(r *http.Request) (int, int, error) {
	params := r.URL.Query()

	var page, limit int

	if params.Get("page") != "" {
		p, err := strconv.Atoi(params.Get("page"))
		if err != nil {
			return 0, 0, errors.New("invalid page parameter")
		}
		page = p
	}

	if params.Get("limit") != "" {
		l, err := strconv.Atoi(params.Get("limit"))
		if err != nil {
			return 0, 0, errors.New("invalid limit parameter")
		}
		limit = l
	}

	return page, limit, nil
}

func (app *application) parseMultipart(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxMultipartBytes)

	err := r.ParseMultipartForm(maxMultipartBytes)
	if err != nil {
		var maxBytesError *http.MaxBytesError

		switch {
		case errors.As(err, &maxBytesError):
			return fmt.Errorf("request body must not be larger than %d bytes", maxBytesError.Limit)
		case errors.Is(err, http.ErrNotMultipart):
			return errors.New("request body must be multipart/form-data")
		default:
			return err
		}
	}

	return nil
}

// formValue returns nil when key is absent from the multipart form.
func formValue(r *http.Request, key string) *string {
	if r.MultipartForm == nil {
		return nil
	}

	values, ok := r.MultipartForm.Value[key]
	if !ok || len(values) == 0 {
		return nil
	}

	return &values[0]
}

// saveFormFile copies the uploaded file field into the upload directory under a
// random name. It returns an empty path when the field is absent.
func (app *application) saveFormFile(r *http.Request, field string) (string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", nil
		}
		return "", err
	}
	defer file.Close()

	if err := os.MkdirAll(app.config.UploadDir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(app.config.UploadDir, uuid.NewString()+strings.ToLower(filepath.Ext(header.Filename)))

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		os.Remove(path)
		return "", err
	}

	return path, nil
}

// removeUploads deletes spooled files the media service did not consume.
func (app *application) removeUploads(paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}

		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			app.logger.Error("could not remove upload", slog.String("path", p), slog.String("error", err.Error()))
		}
	}
}

func tokenCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	}
}

func (app *application) setAccessTokenCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, tokenCookie(accessTokenCookie, token, app.config.JWT.AccessExpiry))
}

func (app *application) setAuthCookies(w http.ResponseWriter, access, refresh string) {
	app.setAccessTokenCookie(w, access)
	http.SetCookie(w, tokenCookie(refreshTokenCookie, refresh, app.config.JWT.RefreshExpiry))
}

func (app *application) clearAuthCookies(w http.ResponseWriter) {
	http.SetCookie(w, tokenCookie(accessTokenCookie, "", -time.Second))
	http.SetCookie(w, tokenCookie(refreshTokenCookie, "", -time.Second))
}
