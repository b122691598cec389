package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"easystay/internal/adapters/amap"
	"easystay/internal/adapters/backend"
	server "easystay/internal/adapters/http_server"
	"easystay/internal/adapters/observability"
	redisad "easystay/internal/adapters/redis"
	"easystay/internal/adapters/statefile"
	"easystay/internal/app"
	"easystay/internal/domain"
	"easystay/internal/shared"
)

const usage = `easystay <command> [args]

session:
  login <email> <password>    sign in and persist the token
  logout                      drop the local session
  whoami                      verify the token and print the profile
  register <name> <email> <phone> <password>

hotels:
  search [-city C] [-keyword K] [-checkin D] [-checkout D] [-tags a,b] [-pages N]
  hotel <id>                  normalized hotel detail

orders:
  book -hotel NAME -room NAME -price P -checkin D -checkout D -guest NAME -phone P
  orders [-status all|pending|completed|cancelled]
  order <no>
  cancel <no>
  pay <no>

misc:
  regeo <lng> <lat>           reverse-geocode coordinates
  serve                       run the debug server (needs DEBUG_ADDR)
`

type cli struct {
	cfg     shared.Config
	session *app.Session
	hotels  *app.Hotels
	orders  *app.Orders
	filters *app.FilterStore
	geo     domain.Geocoder // nil when no AMap key is configured
}

func main() {
	cfg, err := shared.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log.Logger = observability.NewLogger(cfg.AppEnv)

	st, err := statefile.Open(cfg.StatePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StatePath).Msg("open state file failed")
	}

	var cache domain.Cache = redisad.Noop{}
	if cfg.RedisAddr != "" {
		cache = redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	}

	api := backend.New(cfg.UserBase, cfg.BookingBase, st.Token, cfg.RequestTimeout, cfg.RequestRPS)
	filters := app.NewFilterStore()

	c := &cli{
		cfg:     cfg,
		session: app.NewSession(api, st),
		hotels:  app.NewHotels(api, cache, filters, cfg.CacheTTL, cfg.PageSize),
		filters: filters,
	}
	c.orders = app.NewOrders(api, c.session)
	if cfg.AmapKey != "" {
		geo, err := amap.New(cfg.AmapBase, cfg.AmapKey, cfg.RequestTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("amap client init failed")
		}
		c.geo = geo
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := c.run(context.Background(), os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "login":
		return c.login(ctx, args)
	case "logout":
		c.session.Logout()
		fmt.Println("logged out")
		return nil
	case "whoami":
		return c.whoami(ctx)
	case "register":
		return c.register(ctx, args)
	case "search":
		return c.search(ctx, args)
	case "hotel":
		return c.hotel(ctx, args)
	case "book":
		return c.book(ctx, args)
	case "orders":
		return c.listOrders(ctx, args)
	case "order":
		return c.orderDetail(ctx, args)
	case "cancel":
		return c.updateOrder(ctx, args, c.orders.Cancel)
	case "pay":
		return c.updateOrder(ctx, args, c.orders.Pay)
	case "regeo":
		return c.regeo(ctx, args)
	case "serve":
		return c.serve()
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *cli) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: login <email> <password>")
	}
	ok, err := c.session.LoginWithEmail(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("login rejected")
	}
	if p, ok := c.session.Profile(); ok {
		fmt.Printf("logged in as %s <%s>\n", p.Username, p.Email)
	} else {
		fmt.Println("logged in")
	}
	return nil
}

func (c *cli) whoami(ctx context.Context) error {
	if err := c.session.CheckLoginStatus(ctx); err != nil {
		return err
	}
	p, ok := c.session.Profile()
	if !ok {
		fmt.Println("not logged in")
		return nil
	}
	return printJSON(p)
}

func (c *cli) register(ctx context.Context, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: register <name> <email> <phone> <password>")
	}
	err := c.session.Register(ctx, domain.Registration{
		Name: args[0], Email: args[1], Phone: args[2], Password: args[3],
	})
	if err != nil {
		return err
	}
	fmt.Println("registered; use `easystay login` to sign in")
	return nil
}

func (c *cli) search(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	city := fs.String("city", "", "city name")
	keyword := fs.String("keyword", "", "search keyword")
	checkin := fs.String("checkin", "", "check-in date (YYYY-MM-DD)")
	checkout := fs.String("checkout", "", "check-out date (YYYY-MM-DD)")
	tags := fs.String("tags", "", "comma-separated amenity tags")
	pages := fs.Int("pages", 1, "pages to load")
	if err := fs.Parse(args); err != nil {
		return err
	}

	c.filters.Reset()
	c.filters.SetCity(*city, "")
	c.filters.SetKeyword(*keyword)
	for _, t := range strings.Split(*tags, ",") {
		if t = strings.TrimSpace(t); t != "" {
			c.filters.ToggleTag(t)
		}
	}
	if *checkin != "" || *checkout != "" {
		dr := domain.DateRange{}
		if *checkin != "" {
			v := app.NormalizeDate(*checkin)
			dr.CheckIn = &v
		}
		if *checkout != "" {
			v := app.NormalizeDate(*checkout)
			dr.CheckOut = &v
		}
		c.filters.SetDateRange(dr)
	}

	page, err := c.hotels.Search(ctx)
	if err != nil {
		return err
	}
	for i := 1; i < *pages; i++ {
		next, loaded, err := c.hotels.LoadMore(ctx)
		if err != nil {
			return err
		}
		page = next
		if !loaded {
			break
		}
	}
	return printJSON(page)
}

func (c *cli) hotel(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: hotel <id>")
	}
	h, err := c.hotels.Detail(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(h)
}

func (c *cli) book(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ContinueOnError)
	var f domain.OrderForm
	fs.StringVar(&f.HotelName, "hotel", "", "hotel name")
	fs.StringVar(&f.RoomName, "room", "", "room name")
	fs.IntVar(&f.Price, "price", 0, "nightly price, yuan")
	fs.StringVar(&f.CheckIn, "checkin", "", "check-in date")
	fs.StringVar(&f.CheckOut, "checkout", "", "check-out date")
	fs.StringVar(&f.GuestName, "guest", "", "guest name")
	fs.StringVar(&f.GuestPhone, "phone", "", "guest mobile")
	if err := fs.Parse(args); err != nil {
		return err
	}
	no, err := c.orders.Create(ctx, f)
	if err != nil {
		return err
	}
	fmt.Println("order created:", no)
	return nil
}

func (c *cli) listOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders", flag.ContinueOnError)
	status := fs.String("status", "all", "lifecycle tab: all|pending|completed|cancelled")
	if err := fs.Parse(args); err != nil {
		return err
	}
	orders, err := c.orders.List(ctx)
	if err != nil {
		return err
	}
	return printJSON(app.FilterByStatus(orders, *status))
}

func (c *cli) orderDetail(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: order <no>")
	}
	o, err := c.orders.Detail(ctx, args[0])
	if err != nil {
		return err
	}
	return printJSON(o)
}

func (c *cli) updateOrder(ctx context.Context, args []string, op func(context.Context, string) error) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: <cancel|pay> <no>")
	}
	if err := op(ctx, args[0]); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}

func (c *cli) regeo(ctx context.Context, args []string) error {
	if c.geo == nil {
		return fmt.Errorf("AMAP_KEY is not configured")
	}
	if len(args) != 2 {
		return fmt.Errorf("usage: regeo <lng> <lat>")
	}
	lng, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return fmt.Errorf("bad lng: %w", err)
	}
	lat, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("bad lat: %w", err)
	}
	loc, err := c.geo.Regeo(ctx, lng, lat)
	if err != nil {
		return err
	}
	return printJSON(loc)
}

func (c *cli) serve() error {
	if c.cfg.DebugAddr == "" {
		return fmt.Errorf("DEBUG_ADDR is not set")
	}

	srv := server.New()
	reg := observability.InitRegistry()
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(&server.Handlers{
		Session: c.session,
		Hotels:  c.hotels,
		Orders:  c.orders,
		Geo:     c.geo,
	})

	log.Info().Str("addr", c.cfg.DebugAddr).Msg("debug server listening")
	httpSrv := &http.Server{Addr: c.cfg.DebugAddr, Handler: srv.Mux()}
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
