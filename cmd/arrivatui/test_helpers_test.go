package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const catalogueJSON = `{"paradas":[
	{"parada":5274,"nombre":"SANTIAGO","nom_web":"Santiago de Compostela","peso":10,"lat":42.8782,"lon":-8.5448,"latitud":null,"longitud":null},
	{"parada":4802,"nombre":"A CORUÑA","nom_web":"A Coruña","peso":9,"lat":43.3534,"lon":-8.4059,"latitud":43.3534,"longitud":-8.4059},
	{"parada":1234,"nombre":"LUGO","nom_web":"Lugo","peso":5,"lat":null,"lon":null,"latitud":null,"longitud":null}
]}`

const tripsJSON = `{"expediciones":{
	"ida":[
		{"Descripcion_Web":"SANTIAGO - A CORUÑA","Hora_Salida":"2024-04-19T08:15:00+02:00","Hora_Llegada":"2024-04-19T09:20:00+02:00","tarifa_basica":735},
		{"Descripcion_Web":"SANTIAGO - A CORUÑA DIRECTO","Hora_Salida":"2024-04-19T10:00:00+02:00","Hora_Llegada":"2024-04-19T10:55:00+02:00","tarifa_basica":810}
	],
	"vuelta":[
		{"Descripcion_Web":"A CORUÑA - SANTIAGO","Hora_Salida":"2024-04-19T18:30:00+02:00","Hora_Llegada":"2024-04-19T19:35:00+02:00","tarifa_basica":690}
	]
}}`

// fakeArriva serves the catalogue on /stops and the search on /trips.
type fakeArriva struct {
	srv         *httptest.Server
	mu          sync.Mutex
	forms       []url.Values
	userAgents  []string
	stopsStatus int
	tripsStatus int
}

func newFakeArriva(t *testing.T) *fakeArriva {
	t.Helper()
	f := &fakeArriva{stopsStatus: http.StatusOK, tripsStatus: http.StatusOK}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.userAgents = append(f.userAgents, r.UserAgent())

		switch r.URL.Path {
		case "/stops":
			w.WriteHeader(f.stopsStatus)
			if f.stopsStatus == http.StatusOK {
				fmt.Fprint(w, catalogueJSON)
			}
		case "/trips":
			if err := r.ParseForm(); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			f.forms = append(f.forms, r.PostForm)
			w.WriteHeader(f.tripsStatus)
			if f.tripsStatus == http.StatusOK {
				fmt.Fprint(w, tripsJSON)
			}
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(f.srv.Close)

	t.Setenv("ARRIVATUI_STOPS_URL", f.srv.URL+"/stops")
	t.Setenv("ARRIVATUI_TRIPS_URL", f.srv.URL+"/trips")
	return f
}

func (f *fakeArriva) searches() []url.Values {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]url.Values(nil), f.forms...)
}

// executeCommand executes a cobra command and returns its output.
func executeCommand(root *cobra.Command, args ...string) (string, error) {
	resetFlags(root)
	cfgFile = ""

	oldExit := exit
	exit = func(code int) {
		if code != 0 {
			panic(fmt.Sprintf("exit-%d", code))
		}
	}
	defer func() { exit = oldExit }()
	defer func() {
		if r := recover(); r != nil {
			if s, ok := r.(string); ok && strings.HasPrefix(s, "exit-") {
				return
			}
			panic(r)
		}
	}()

	root.SetArgs(args)
	b := new(bytes.Buffer)
	root.SetOut(b)
	root.SetErr(b)
	// No stdin so a stray prompt fails instead of hanging.
	root.SetIn(bytes.NewBufferString(""))
	err := root.Execute()
	return b.String(), err
}

// resetFlags resets all flags to their default values.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}
