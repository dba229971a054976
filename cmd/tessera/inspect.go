package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	terrors "github.com/vango-dev/tessera/internal/errors"
	"github.com/vango-dev/tessera/pkg/paint"
	"github.com/vango-dev/tessera/pkg/protocol"
)

func inspectCmd() *cobra.Command {
	var (
		codecName string
		client    bool
	)

	cmd := &cobra.Command{
		Use:   "inspect FILE",
		Short: "Decode a recorded frame stream",
		Long: `Decode a file of concatenated protocol frames and print them.

Frames are read as server output unless --client is given, which
matters for the Hello frame type: the client sends Hello, the server
answers with Welcome.

Examples:
  tessera inspect session.bin
  tessera inspect --client --codec=cbor input.bin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			codec, ok := protocol.CodecByName(codecName)
			if !ok {
				return terrors.New("T023").WithField("--codec")
			}
			f, err := os.Open(args[0])
			if err != nil {
				return terrors.New("T101").WithField(args[0]).Wrap(err)
			}
			defer f.Close()
			return inspect(cmd.OutOrStdout(), f, codec, client)
		},
	}

	cmd.Flags().StringVar(&codecName, "codec", protocol.CodecBinary, "Payload codec: binary or cbor")
	cmd.Flags().BoolVar(&client, "client", false, "Frames were sent by the client")

	return cmd
}

// inspect prints every frame of r.
func inspect(w io.Writer, r io.Reader, codec protocol.Codec, client bool) error {
	for i := 0; ; i++ {
		f, err := protocol.ReadFrame(r, protocol.HardMaxAllocation)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return terrors.New("T020").WithField(fmt.Sprintf("frame %d", i)).Wrap(err)
		}
		body, err := f.Body(protocol.HardMaxAllocation)
		if err != nil {
			return terrors.New("T020").WithField(fmt.Sprintf("frame %d", i)).Wrap(err)
		}

		fmt.Fprintf(w, "#%d %s (%d bytes", i, f.Type, len(f.Payload))
		if f.Flags.Has(protocol.FlagCompressed) {
			fmt.Fprintf(w, ", %d uncompressed", len(body))
		}
		fmt.Fprintln(w, ")")

		if err := printPayload(w, f.Type, body, codec, client); err != nil {
			return terrors.New("T021").WithField(fmt.Sprintf("frame %d", i)).Wrap(err)
		}
	}
}

func printPayload(w io.Writer, t protocol.FrameType, body []byte, codec protocol.Codec, client bool) error {
	switch t {
	case protocol.FrameHello:
		if client {
			h, err := protocol.DecodeHello(body)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "  version=%s codec=%q session=%q resync=%t\n", h.Version, h.Codec, h.SessionID, h.Resync)
			return nil
		}
		wl, err := protocol.DecodeWelcome(body)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  status=%s version=%s codec=%q session=%q window=%q\n",
			wl.Status, wl.Version, wl.Codec, wl.SessionID, wl.WindowID)

	case protocol.FrameVariables:
		b, err := codec.DecodeVariables(body)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  seq=%d\n", b.Seq)
		for _, id := range slices.Sorted(maps.Keys(b.Changes)) {
			vars := b.Changes[id]
			for _, name := range slices.Sorted(maps.Keys(vars)) {
				fmt.Fprintf(w, "  %s.%s = %#v\n", id, name, vars[name])
			}
		}

	case protocol.FramePaint:
		m, err := codec.DecodePaint(body)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  seq=%d changes=%d nodes=%d\n", m.Seq, len(m.Document.Changes), m.Document.Count())
		for _, n := range m.Document.Changes {
			printNode(w, n, 1)
		}

	case protocol.FrameControl:
		c, err := protocol.DecodeControl(body)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s value=%d", c.Type, c.Value)
		if c.Reason != "" {
			fmt.Fprintf(w, " reason=%q", c.Reason)
		}
		fmt.Fprintln(w)

	case protocol.FrameError:
		m, err := protocol.DecodeErrorMessage(body)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s\n", m.Error())
	}
	return nil
}

// printNode writes n as an indented outline: tag, id, attributes, and
// variables prefixed with $.
func printNode(w io.Writer, n *paint.Node, depth int) {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(n.Tag)
	if n.ID != "" {
		b.WriteString("#" + n.ID)
	}
	if n.Cached {
		b.WriteString(" (cached)")
	}
	for _, a := range n.Attrs {
		fmt.Fprintf(&b, " %s=%#v", a.Name, a.Value)
	}
	for _, v := range n.Vars {
		fmt.Fprintf(&b, " $%s=%#v", v.Name, v.Value)
	}
	fmt.Fprintln(w, b.String())
	for _, c := range n.Children {
		printNode(w, c, depth+1)
	}
}
