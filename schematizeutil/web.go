/*
Copyright © 2026 the schematize authors.
This file is part of schematize.

schematize is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

schematize is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with schematize.  If not, see <http://www.gnu.org/licenses/>.
*/

package schematizeutil

import (
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/ctessum/gobra"
	"github.com/sirupsen/logrus"
	"github.com/skratchdot/open-golang/open"
	"github.com/spf13/cobra"
)

// address is where the configuration GUI is served.
const address = "localhost:7171"

// setConfigHandler reads the configuration file given in the "config"
// form value and responds with the resulting value of every option.
func setConfigHandler(w http.ResponseWriter, r *http.Request) {
	r.ParseForm()
	configFile := r.Form.Get("config")
	if configFile == "" {
		http.Error(w, "missing configuration file", http.StatusNoContent)
		return
	}
	Root.PersistentFlags().Set("config", configFile)
	if err := setConfig(); err != nil {
		http.Error(w, err.Error(), http.StatusNoContent)
		return
	}
	config := make(map[string]interface{})
	for _, option := range options {
		config[option.name] = Cfg.Get(option.name)
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(config); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// StartWebServer starts a browser interface to the commands.
func StartWebServer() {
	setConfig() // Ignore any errors for now.

	http.HandleFunc("/setConfig", setConfigHandler)

	logrus.Info("Loading front-end...")

	for _, cmd := range []*cobra.Command{Root, versionCmd, runCmd, stepCmd, configCmd} {
		cmd.SilenceUsage = true // We don't want the usage messages in the GUI.
	}

	const tmpl = `
<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8">
	<title>schematize</title>
	<style>
		html, body {padding: 0; margin: 2% 0; font-family: sans-serif;}
		.container { max-width: 700px; margin: 0 auto; padding: 10px; }
		div[id^="gobra-"] blockquote { border-left: 3px solid #bbb; margin: .3em; color: #333; padding-left: 5px; font-size: 75%; }
		div[id^="gobra-"] code { font-weight: bold; }
		div[id^="gobra-"] input { font-family: monospace; margin-left: .2em; width: 50%; outline:none; }
		.red-border{ border: 1px solid #c35; }
		.green-border{ border: 1px solid #3c5; }
	</style>
</head>
<body>
<div class="container">
	<h1>schematize</h1>
	<p>Choose the input subdivision and the orientations below.</p>
	<div>
		{{.}}
	</div>
</div>

<script>
let allFlags = [...document.querySelectorAll('[data-name]')];
let configInput = allFlags.filter(x => x.dataset.name == "config")[0].children[0];
configInput.addEventListener("input", e => {
	fetch("http://` + address + `/setConfig?config="+configInput.value)
		.then(res => {
			if (res.status !== 200) {
				configInput.classList.add("red-border");
				return;
			}
			res.json().then(data => {
				configInput.classList.remove("red-border");
				for (let key in data)
					for (let f of allFlags)
						if (f.dataset.name == key) {
							let input = f.children[0];
							input.value = JSON.stringify(data[key]).replace(/^"+|"+$/g, '');
							input.classList.add("green-border");
						}
			})
		})
		.catch(err => console.log("Error fetching /setConfig", err))
})
</script>
</body>
</html>`

	output := template.Must(template.New("").Parse(tmpl))
	server := gobra.Server{Root: Root, ServerAddress: address, AllowCORS: false, HTML: output}
	logrus.Info("Server starting... ")
	open.Run("http://" + address)
	fmt.Println("If not opened automatically, please visit http://" + address)
	server.Start()
}
