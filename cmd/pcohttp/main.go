package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/nasa-jpl/pcolab/generichttp"
	"github.com/nasa-jpl/pcolab/generichttp/camera"
	"github.com/nasa-jpl/pcolab/imgrec"
	"github.com/nasa-jpl/pcolab/pco"
	"github.com/nasa-jpl/pcolab/pco/sdk"
	"github.com/nasa-jpl/pcolab/server/middleware/locker"
	"github.com/nasa-jpl/pcolab/usbprobe"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/theckman/yacspin"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "pcohttp.yml"
	k              = koanf.New(".")
)

// mockTypes are the camera models the mock SDK can pretend to be
var mockTypes = map[string]uint16{
	"1200hs":   sdk.CameraTypePCO1200HS,
	"1300":     sdk.CameraTypePCO1300,
	"1400":     sdk.CameraTypePCO1400,
	"1600":     sdk.CameraTypePCO1600,
	"2000":     sdk.CameraTypePCO2000,
	"4000":     sdk.CameraTypePCO4000,
	"dimax":    sdk.CameraTypePCODimaxStd,
	"edge":     sdk.CameraTypePCOEdge,
	"edge42":   sdk.CameraTypePCOEdge42,
	"edgegl":   sdk.CameraTypePCOEdgeGL,
	"pixelfly": sdk.CameraTypePCOUSBPixelfly,
}

type recorder struct {
	// Root is the root folder to write to
	Root string `yaml:"Root"`

	// Prefix is the filename prefix to use
	Prefix string `yaml:"Prefix"`
}

type config struct {
	Addr           string                 `yaml:"Addr"`
	Root           string                 `yaml:"Root"`
	CameraIndex    int                    `yaml:"CameraIndex"`
	Mock           bool                   `yaml:"Mock"`
	MockCameraType string                 `yaml:"MockCameraType"`
	StreamMaxFPS   float64                `yaml:"StreamMaxFPS"`
	RebootWait     string                 `yaml:"RebootWait"`
	Recorder       recorder               `yaml:"Recorder"`
	BootupArgs     map[string]interface{} `yaml:"BootupArgs"`
}

func setupconfig() {
	k.Load(structs.Provider(config{
		Addr:           ":8000",
		Root:           "/pco",
		CameraIndex:    0,
		MockCameraType: "edge",
		StreamMaxFPS:   30,
		RebootWait:     "30s",
		Recorder:       recorder{Prefix: "pco_"},
		BootupArgs: map[string]interface{}{
			"exposure-time":  0.01,
			"trigger-source": "auto",
		}}, "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func root() {
	str := `pcohttp exposes control of PCO scientific cameras over HTTP
This enables a server-client architecture,
and the clients can leverage the excellent HTTP
libraries for any programming language,
instead of custom socket logic.

Usage:
	pcohttp <command>

Commands:
	run
	help
	mkconf
	conf
	probe
	version`
	fmt.Println(str)
}

func help() {
	str := `pcohttp is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

When no configuration is provided, the defaults are used.  Keys are not case-sensitive.
The command mkconf generates the configuration file with the default values.

CameraIndex selects which camera the SDK opens when more than one is attached.
The probe command lists PCO cameras on the USB bus; cameras on Camera Link or
GigE are not listed but can still be opened.

Mock runs the server against a simulated camera, which is useful on machines
without the PCO SDK.  MockCameraType picks the model, one of
	` + strings.Join(mockNames(), ", ") + `

BootupArgs are property name: value pairs applied when the server starts.  If
there is an error during bootup, a property is likely not supported by the
camera; remove it from BootupArgs.  GET /property on the running server lists
the properties of the connected camera.

StreamMaxFPS caps the frame rate of /burst.  RebootWait is how long the server
waits for a pco.edge to come back after a change of shutter mode reboots it.

If the files and folders created do not have the permissions you want on linux,
your umask is likely to blame.`
	fmt.Println(str)
}

func mockNames() []string {
	names := make([]string, 0, len(mockTypes))
	for n := range mockTypes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func mkconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	err = yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("pcohttp version %v\n", Version)
}

func probe() {
	devs, err := usbprobe.Probe()
	if err != nil {
		log.Fatal(err)
	}
	if len(devs) == 0 {
		fmt.Println("no PCO USB devices found")
		return
	}
	for _, d := range devs {
		fmt.Println(d)
	}
}

func loadSDK(cfg config) sdk.SDK {
	if cfg.Mock {
		typ, ok := mockTypes[strings.ToLower(cfg.MockCameraType)]
		if !ok {
			log.Fatalf("mock camera type %q is not one of %v", cfg.MockCameraType, mockNames())
		}
		log.Printf("using a simulated %s camera", cfg.MockCameraType)
		return sdk.NewMock(typ)
	}
	s, err := sdk.Native()
	if err != nil {
		log.Fatal(err)
	}
	return s
}

// open opens the camera with a spinner running
func open(s sdk.SDK, index int) *pco.Camera {
	spinner, err := yacspin.New(yacspin.Config{
		Frequency:         100 * time.Millisecond,
		CharSet:           yacspin.CharSets[14],
		Suffix:            fmt.Sprintf(" opening camera %d", index),
		StopCharacter:     "✓",
		StopColors:        []string{"fgGreen"},
		StopFailCharacter: "✗",
		StopFailColors:    []string{"fgRed"},
	})
	if err != nil {
		log.Fatal(err)
	}
	spinner.Start()
	c, err := pco.Open(s, index)
	if err != nil {
		spinner.StopFailMessage(" " + err.Error())
		spinner.StopFail()
		c.Close()
		os.Exit(1)
	}
	spinner.StopMessage(" " + c.Version())
	spinner.Stop()
	return c
}

func run() {
	cfg := config{}
	k.Unmarshal("", &cfg)
	rebootWait, err := time.ParseDuration(cfg.RebootWait)
	if err != nil {
		log.Fatalf("RebootWait: %v", err)
	}

	c := open(loadSDK(cfg), cfg.CameraIndex)
	defer c.Close()

	err = c.Configure(cfg.BootupArgs)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("applied bootup args %v", cfg.BootupArgs)

	args := cfg.Recorder
	r := &imgrec.Recorder{Root: args.Root, Prefix: args.Prefix, Enabled: args.Root != ""}
	w := camera.NewHTTPCamera(c, r)
	w.MaxFPS = cfg.StreamMaxFPS
	w.RebootWait = rebootWait
	imgrec.NewHTTPWrapper(r).Inject(w)
	l := locker.New()
	locker.Inject(w, l)

	// clean up the submux string
	hndlrS := cfg.Root
	hndlrS = generichttp.SubMuxSanitize(hndlrS)
	root := chi.NewRouter()
	root.Use(middleware.Logger)
	mux := chi.NewRouter()
	mux.Use(l.Check)
	root.Mount(hndlrS, mux)
	w.RT().Bind(mux)
	addr := cfg.Addr + hndlrS
	log.Println("now listening for requests at ", addr)
	log.Fatal(http.ListenAndServe(cfg.Addr, root))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	switch cmd {
	case "help":
		help()
		return
	case "mkconf":
		mkconf()
		return
	case "conf":
		printconf()
		return
	case "run":
		run()
		return
	case "probe":
		probe()
		return
	case "version":
		pversion()
		return
	default:
		log.Fatal("unknown command")
	}
}
