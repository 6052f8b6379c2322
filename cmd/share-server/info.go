package main

import (
	"fmt"
	"io"
	"net"
	"strings"

	"github.com/mdp/qrterminal/v3"

	"github.com/Its-donkey/sharebox/internal/config"
	"github.com/Its-donkey/sharebox/internal/ui/state"
)

// Half-block glyphs for a compact QR code.
const (
	qrBlackBlack = " "
	qrBlackWhite = "▄"
	qrWhiteBlack = "▀"
	qrWhiteWhite = "█"
)

func printInfo(out io.Writer, cfg *config.Config) {
	fmt.Fprintln(out, "╔════════════════════════════════════╗")
	fmt.Fprintln(out, "║          ShareBox - Ready          ║")
	fmt.Fprintln(out, "╚════════════════════════════════════╝")
	fmt.Fprintf(out, "\n🔑 Password: from %s\n", cfg.PasswordSource())
	fmt.Fprintf(out, "📁 Upload folder: %s\n", cfg.Storage.UploadDir)
	fmt.Fprintf(out, "📝 Shared text: %s\n", cfg.Storage.TextFile)
	fmt.Fprintf(out, "📦 Max upload: %s\n", state.LimitLabel(cfg.MaxUploadBytes()))

	urls := serverURLs(cfg.Server.Listen, localIPs())
	fmt.Fprintf(out, "\n🔗 URLs:\n")
	for _, u := range urls {
		fmt.Fprintf(out, "   %s\n", u)
	}

	if cfg.Server.ShowQR && len(urls) > 0 {
		target := urls[len(urls)-1]
		fmt.Fprintf(out, "\n📱 Scan to open %s\n", target)
		qrterminal.GenerateWithConfig(target, qrterminal.Config{
			Level:          qrterminal.M,
			Writer:         out,
			HalfBlocks:     true,
			BlackChar:      qrBlackBlack,
			WhiteBlackChar: qrWhiteBlack,
			WhiteChar:      qrWhiteWhite,
			BlackWhiteChar: qrBlackWhite,
			QuietZone:      1,
		})
	}
	fmt.Fprintln(out, "\n⏹️  Press Ctrl+C to stop")
	fmt.Fprintln(out)
}

// serverURLs lists the URLs a browser can use to reach listen. Wildcard
// hosts expand to every address in ips; loopback comes first.
func serverURLs(listen string, ips []string) []string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return []string{"http://" + listen}
	}
	switch host {
	case "", "0.0.0.0", "::":
	default:
		return []string{"http://" + net.JoinHostPort(host, port)}
	}
	urls := make([]string, 0, len(ips))
	for _, ip := range ips {
		urls = append(urls, "http://"+net.JoinHostPort(ip, port))
	}
	return urls
}

func localIPs() []string {
	ips := []string{"127.0.0.1"}

	ifaces, err := net.Interfaces()
	if err != nil {
		return ips
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 || iface.Flags&net.FlagLoopback != 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			ip := ipnet.IP.To4()
			if ip == nil || strings.HasPrefix(ip.String(), "169.254.") {
				continue
			}
			ips = append(ips, ip.String())
		}
	}
	return ips
}
