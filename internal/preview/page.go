package preview

const htmlContent = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Mesh Preview</title>
    <style>
        body {
            margin: 0;
            padding: 0;
            font-family: monospace;
            background: #1a1a22;
            color: #ddd;
            display: flex;
            flex-direction: column;
            align-items: center;
        }
        #frame {
            margin-top: 20px;
            max-width: 95vw;
            image-rendering: auto;
            border: 1px solid #333;
        }
        #status {
            margin: 10px;
            font-size: 13px;
        }
        #status.disconnected { color: #e57373; }
        #status.connected { color: #81c784; }
        #dims { font-size: 13px; color: #9fa8da; }
    </style>
</head>
<body>
    <img id="frame" alt="viewer frame">
    <div id="status" class="disconnected">Disconnected</div>
    <div id="dims"></div>

    <script>
        let ws;
        let currentURL = null;

        function connect() {
            const protocol = location.protocol === 'https:' ? 'wss:' : 'ws:';
            ws = new WebSocket(protocol + '//' + location.host + '/ws');
            ws.binaryType = 'blob';

            ws.onopen = function() {
                setStatus(true);
            };

            ws.onmessage = function(event) {
                const url = URL.createObjectURL(event.data);
                const img = document.getElementById('frame');
                img.src = url;
                if (currentURL) URL.revokeObjectURL(currentURL);
                currentURL = url;
            };

            ws.onclose = function() {
                setStatus(false);
                setTimeout(connect, 3000);
            };
        }

        function setStatus(connected) {
            const el = document.getElementById('status');
            el.textContent = connected ? 'Connected' : 'Disconnected';
            el.className = connected ? 'connected' : 'disconnected';
        }

        function pollDimensions() {
            fetch('/dimensions')
                .then(r => r.json())
                .then(d => {
                    const el = document.getElementById('dims');
                    if (d.state === 'ready') {
                        el.textContent = d.width.toFixed(2) + ' x ' +
                            d.height.toFixed(2) + ' x ' + d.depth.toFixed(2) +
                            ' (' + d.triangles + ' triangles)';
                    } else {
                        el.textContent = d.state + (d.error ? ': ' + d.error : '');
                    }
                })
                .catch(() => {});
        }

        connect();
        setInterval(pollDimensions, 2000);
        pollDimensions();
    </script>
</body>
</html>
`
