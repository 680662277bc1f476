package adapters

import (
	"errors"
	"net/http"
	"testing"

	"github.com/rhuss/apiclient/pkg/apicall"
)

func TestLocation(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"10001", "10001"},
		{"10001 US", "US/10001"},
		{"New York US", "US/New_York"},
		{"  Rio  de   Janeiro BR ", "BR/Rio_de_Janeiro"},
		{"CA/San_Francisco", "CA/San_Francisco"},
		{"Zürich CH", "CH/Z%C3%BCrich"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Location(tt.input)
			if err != nil {
				t.Fatalf("Location() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Location(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLocation_Blank(t *testing.T) {
	for _, in := range []string{"", "   ", "\t"} {
		if _, err := Location(in); !errors.Is(err, ErrInvalidLocation) {
			t.Errorf("Location(%q) error = %v, want ErrInvalidLocation", in, err)
		}
	}
}

func TestWeatherAndForecast(t *testing.T) {
	var gotPath string
	host := serve(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"current_observation":{"temp_c":21}}`))
	})
	opts := Options{Plain: plainTransport(t), WeatherHost: host}

	tests := []struct {
		call     string
		input    string
		wantPath string
	}{
		{Weather, "New York US", "/api/KEY/conditions/q/US/New_York.json"},
		{Forecast, "10001 US", "/api/KEY/conditions/forecast/q/US/10001.json"},
		{Weather, "94107", "/api/KEY/conditions/q/94107.json"},
	}
	for _, tt := range tests {
		t.Run(tt.call+" "+tt.input, func(t *testing.T) {
			o := call(t, opts, tt.call, tt.input, apicall.Credentials{APIKey: "KEY"})
			if o.err != nil {
				t.Fatalf("unexpected error: %v", o.err)
			}
			if gotPath != tt.wantPath {
				t.Errorf("path = %q, want %q", gotPath, tt.wantPath)
			}
			rep := o.res.(WeatherReport)
			if rep.Kind != tt.call || rep.Call() != tt.call {
				t.Errorf("Kind = %q, want %q", rep.Kind, tt.call)
			}
			if rep.StatusCode != http.StatusOK || rep.Body != `{"current_observation":{"temp_c":21}}` {
				t.Errorf("report = %+v", rep)
			}
		})
	}
}

func TestWeather_PassesThroughErrorStatus(t *testing.T) {
	host := serve(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"response":{"error":{"type":"keynotfound"}}}`))
	})

	o := call(t, Options{Plain: plainTransport(t), WeatherHost: host}, Weather, "Paris FR", apicall.Credentials{APIKey: "bad"})
	if o.err != nil {
		t.Fatalf("unexpected error: %v", o.err)
	}
	if rep := o.res.(WeatherReport); rep.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", rep.StatusCode)
	}
}

func TestWeather_BlankInput(t *testing.T) {
	quietLogs(t)
	requested := false
	host := serve(t, func(http.ResponseWriter, *http.Request) { requested = true })

	o := call(t, Options{Plain: plainTransport(t), WeatherHost: host}, Forecast, "  ", apicall.Credentials{APIKey: "KEY"})
	if !errors.Is(o.err, ErrInvalidLocation) {
		t.Errorf("error = %v, want ErrInvalidLocation", o.err)
	}
	if requested {
		t.Error("blank input must not reach the provider")
	}
}
